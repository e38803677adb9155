package district

import (
	"bvvassist-backend/internal/agenda"
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/council"
	"bvvassist-backend/internal/scrapers/oparl"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultSystemUrlTemplate is where the Berlin districts serve their OParl system document.
const DefaultSystemUrlTemplate = "https://www.sitzungsdienst-%s.de/oi/oparl/1.0/system.asp"

// ErrNoAgendaData marks a district whose meeting list could not be read.
var ErrNoAgendaData = errors.New("no agenda data available for this district")

const (
	report_loader_load    = "loader.load"
	report_loader_members = "loader.load-members"
	report_loader_agenda  = "loader.load-agenda"
)

// Snapshot is everything loaded for one district. MembersErr and AgendaErr record why a part
// is empty, one part failing leaves the other intact.
type Snapshot struct {
	District      District
	Body          oparl.Body
	Organizations []council.OrganizationRow
	// Members holds every membership, current and past, joined with its organization.
	Members    []council.MemberRow
	MembersErr error
	Meetings   []agenda.MeetingWithAgenda
	AgendaErr  error
}

// Current returns the memberships that have not ended.
func (s Snapshot) Current() []council.MemberRow {
	return council.Current(s.Members)
}

type LoaderOptions struct {
	// SystemUrlTemplate holds a single %s for the district slug.
	SystemUrlTemplate string
	Retry             oparl.RetryPolicy
}

// Loader follows system -> body -> persons / meetings for a district.
type Loader struct {
	tel        telemetry.API
	api        oparl.API
	normalizer council.Normalizer
	opts       LoaderOptions
}

func NewLoader(tel telemetry.API, api oparl.API, normalizer council.Normalizer, opts LoaderOptions) Loader {
	assert.NotNil(tel)
	assert.NotNil(api)

	if opts.SystemUrlTemplate == "" {
		opts.SystemUrlTemplate = DefaultSystemUrlTemplate
	}
	return Loader{
		tel:        telemetry.NewScopedAPI("district", tel),
		api:        api,
		normalizer: normalizer,
		opts:       opts,
	}
}

// Body fetches the system document of d and the first body it lists.
func (l Loader) Body(ctx context.Context, d District) (oparl.Body, error) {
	systemUrl := d.SystemUrl(l.opts.SystemUrlTemplate)
	system, err := oparl.FetchInto[oparl.System](ctx, l.api, systemUrl)
	if err != nil {
		return oparl.Body{}, fmt.Errorf("fetch system: %w", err)
	}
	if system.Body == "" {
		return oparl.Body{}, fmt.Errorf("system %s: %w: body", systemUrl, oparl.ErrMissingReference)
	}

	bodies, err := oparl.FetchInto[oparl.BodyList](ctx, l.api, system.Body)
	if err != nil {
		return oparl.Body{}, fmt.Errorf("fetch bodies: %w", err)
	}
	if len(bodies.Data) == 0 {
		return oparl.Body{}, fmt.Errorf("body list %s: %w: data[0]", system.Body, oparl.ErrMissingReference)
	}
	return bodies.Data[0], nil
}

// LoadMembers collects the persons of body and joins their memberships with the organizations.
func (l Loader) LoadMembers(ctx context.Context, body oparl.Body) ([]council.MemberRow, []council.OrganizationRow, error) {
	if body.Person == "" {
		return nil, nil, fmt.Errorf("body %s: %w: person", body.Id, oparl.ErrMissingReference)
	}

	persons, err := l.api.CollectPages(ctx, body.Person, l.opts.Retry)
	if err != nil {
		return nil, nil, fmt.Errorf("collect persons: %w", err)
	}
	rows := l.normalizer.NormalizePersons(persons)

	orgs, err := l.normalizer.NormalizeOrganizations(ctx, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize organizations: %w", err)
	}
	return council.Merge(rows, orgs), orgs, nil
}

// LoadAgenda fetches the meeting list of body. Every failure wraps ErrNoAgendaData.
func (l Loader) LoadAgenda(ctx context.Context, body oparl.Body) ([]agenda.MeetingWithAgenda, error) {
	if body.Meeting == "" {
		return nil, fmt.Errorf("%w: body %s: %w: meeting", ErrNoAgendaData, body.Id, oparl.ErrMissingReference)
	}

	payload, err := l.api.Fetch(ctx, body.Meeting)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAgendaData, err)
	}
	meetings, err := agenda.ExtractAgendas(l.tel, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAgendaData, err)
	}
	return meetings, nil
}

// Load builds the snapshot of d. Only a failure to reach the body, or a cancelled context,
// is returned as an error.
func (l Loader) Load(ctx context.Context, d District) (Snapshot, error) {
	body, err := l.Body(ctx, d)
	if err != nil {
		l.tel.ReportBroken(report_loader_load, err, d.Slug)
		return Snapshot{District: d}, fmt.Errorf("load %s: %w", d.Slug, err)
	}

	snapshot := Snapshot{District: d, Body: body}

	group := errgroup.Group{}
	group.Go(func() error {
		members, orgs, err := l.LoadMembers(ctx, body)
		if err != nil {
			l.tel.ReportBroken(report_loader_members, err, d.Slug)
			snapshot.MembersErr = err
			return nil
		}
		snapshot.Members = members
		snapshot.Organizations = orgs
		return nil
	})
	group.Go(func() error {
		meetings, err := l.LoadAgenda(ctx, body)
		if err != nil {
			l.tel.ReportWarning(report_loader_agenda, err, d.Slug)
			snapshot.AgendaErr = err
			return nil
		}
		snapshot.Meetings = meetings
		return nil
	})
	_ = group.Wait()

	if ctx.Err() != nil {
		return snapshot, ctx.Err()
	}
	return snapshot, nil
}
