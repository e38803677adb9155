package chrono

import (
	"bvvassist-backend/internal/components/telemetry"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	report_cron_job      = "cron.job"
	report_cron_schedule = "cron.schedule"
	report_cron_internal = "cron.internal"
)

// CronAPI runs named jobs on a cron schedule.
type CronAPI interface {
	Schedule(name, spec string, job func()) error
}

// StandardCron evaluates schedules in Europe/Berlin. A job that panics is
// reported as broken, a job still running when its next tick arrives skips
// that tick.
type StandardCron struct {
	cron *cron.Cron
	tel  telemetry.API
}

func NewStandardCron(tel telemetry.API) StandardCron {
	scoped := telemetry.NewScopedAPI("chrono", tel)
	logger := cronLogger{tel: scoped}
	scheduler := cron.New(
		cron.WithLocation(berlin),
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)
	scheduler.Start()

	return StandardCron{cron: scheduler, tel: scoped}
}

func (s StandardCron) Schedule(name, spec string, job func()) error {
	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		job()
		s.tel.ReportDebug(report_cron_job, "job", name, "took", time.Since(start).String())
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.tel.ReportDebug(
		report_cron_schedule,
		"job", name,
		"spec", spec,
		"next", s.cron.Entry(id).Next.Format(time.RFC3339),
	)
	return nil
}

// Stop stops the scheduler and returns a context that is done once running jobs finished.
func (s StandardCron) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger forwards the scheduler's own logging, which includes recovered panics.
type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(report_cron_internal, append([]any{"msg", msg}, keysAndValues...)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(report_cron_internal, append([]any{fmt.Errorf("%s: %w", msg, err)}, keysAndValues...)...)
}
