package agenda

import (
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/scrapers/oparl"
	"bvvassist-backend/lib/htmlutil"
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// UnknownLocation stands in for a location that could not be looked up.
const UnknownLocation = "Unbekannt"

const (
	report_search_locate = "searcher.locate"
	report_search        = "searcher.search"
)

// Match is an agenda item whose name contains the search term.
type Match struct {
	MeetingId      string  `json:"meetingId"`
	MeetingName    *string `json:"meetingName"`
	Start          *string `json:"start"`
	End            *string `json:"end"`
	Location       string  `json:"location"`
	AgendaItemName string  `json:"agendaItemName"`
	Public         bool    `json:"public"`
}

// Searcher finds agenda items by name and looks up where their meetings take place.
type Searcher struct {
	tel     telemetry.API
	fetcher oparl.Fetcher
	workers int
}

// NewSearcher creates a Searcher that fetches meeting documents through fetcher, at most
// workers at a time.
func NewSearcher(tel telemetry.API, fetcher oparl.Fetcher, workers int) Searcher {
	assert.NotNil(tel)
	assert.NotNil(fetcher)

	if workers < 1 {
		workers = 1
	}
	return Searcher{
		tel:     telemetry.NewScopedAPI("agenda", tel),
		fetcher: fetcher,
		workers: workers,
	}
}

// Search returns every agenda item whose name contains term, ignoring case, in meeting then
// item order. An empty term searches nothing and returns nil. Each match carries the location
// of its meeting, or UnknownLocation when the meeting document cannot tell.
func (s Searcher) Search(ctx context.Context, meetings []MeetingWithAgenda, term string) []Match {
	if term == "" {
		return nil
	}
	needle := strings.ToLower(term)

	var matches []Match
	var located []string
	for _, meeting := range meetings {
		for _, item := range meeting.AgendaItems {
			if item.Name == nil || !strings.Contains(strings.ToLower(*item.Name), needle) {
				continue
			}
			matches = append(matches, Match{
				MeetingId:      meeting.Id,
				MeetingName:    meeting.Name,
				Start:          meeting.Start,
				End:            meeting.End,
				AgendaItemName: *item.Name,
				Public:         item.Public,
			})
			located = appendDistinct(located, meeting.Id)
		}
	}
	if len(matches) == 0 {
		s.tel.ReportDebug(report_search, term, 0)
		return []Match{}
	}

	locations := s.locate(ctx, located)
	for i := range matches {
		matches[i].Location = locations[matches[i].MeetingId]
	}
	s.tel.ReportDebug(report_search, term, len(matches))
	return matches
}

// locate fetches the location of each meeting once.
func (s Searcher) locate(ctx context.Context, meetingIds []string) map[string]string {
	found := make([]string, len(meetingIds))

	group := errgroup.Group{}
	group.SetLimit(s.workers)
	for i, id := range meetingIds {
		group.Go(func() error {
			found[i] = s.location(ctx, id)
			return nil
		})
	}
	_ = group.Wait()

	out := make(map[string]string, len(meetingIds))
	for i, id := range meetingIds {
		out[id] = found[i]
	}
	return out
}

func (s Searcher) location(ctx context.Context, meetingId string) string {
	if meetingId == "" {
		return UnknownLocation
	}
	meeting, err := oparl.FetchInto[oparl.Meeting](ctx, s.fetcher, meetingId)
	if err != nil {
		s.tel.ReportWarning(report_search_locate, err, meetingId)
		return UnknownLocation
	}
	if meeting.Location == nil || meeting.Location.Description == nil {
		return UnknownLocation
	}
	description := htmlutil.Text(*meeting.Location.Description)
	if description == "" {
		return UnknownLocation
	}
	return description
}

func appendDistinct(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
