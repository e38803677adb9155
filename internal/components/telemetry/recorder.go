package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call captured by Recorder.
type Report struct {
	Level  string
	Id     string
	Params []any
}

// Recorder is an API that keeps every report in memory, tests use it to assert that
// degraded paths were actually reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) record(level, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Level: level, Id: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns a copy of the reports made at the given level whose id contains substr.
func (r *Recorder) Reports(level, substr string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level && strings.Contains(report.Id, substr) {
			out = append(out, report)
		}
	}
	return out
}
