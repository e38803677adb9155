package council

import (
	"bvvassist-backend/internal/components/assert"
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/scrapers/oparl"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	report_normalize_persons       = "normalizer.normalize-persons"
	report_normalize_organizations = "normalizer.normalize-organizations"
)

// Normalizer turns raw person and organization documents into flat tables.
type Normalizer struct {
	tel     telemetry.API
	fetcher oparl.Fetcher
	workers int
}

// NewNormalizer creates a Normalizer fetching organizations through fetcher, at most workers
// at a time. workers below 1 fetch one organization after the other.
func NewNormalizer(tel telemetry.API, fetcher oparl.Fetcher, workers int) Normalizer {
	assert.NotNil(tel)
	assert.NotNil(fetcher)

	if workers < 1 {
		workers = 1
	}
	return Normalizer{
		tel:     telemetry.NewScopedAPI("council", tel),
		fetcher: fetcher,
		workers: workers,
	}
}

// NormalizePersons flattens the memberships of every person into one row per membership.
// Persons without memberships contribute nothing. A person or membership that does not
// decode is skipped and reported.
func (n Normalizer) NormalizePersons(raw []json.RawMessage) []MembershipRow {
	var rows []MembershipRow
	for i, item := range raw {
		var p person
		err := json.Unmarshal(item, &p)
		if err != nil {
			n.tel.ReportWarning(report_normalize_persons, fmt.Errorf("person %d: %w", i, err))
			continue
		}
		if p.Membership == nil {
			continue
		}

		for j, rawMembership := range *p.Membership {
			var m oparl.Membership
			err := json.Unmarshal(rawMembership, &m)
			if err != nil {
				n.tel.ReportWarning(
					report_normalize_persons,
					fmt.Errorf("membership %d of %s: %w", j, p.Id, err),
				)
				continue
			}
			rows = append(rows, MembershipRow{
				PersonId:        p.Id,
				Name:            p.Name,
				FamilyName:      p.FamilyName,
				GivenName:       p.GivenName,
				FormOfAddress:   p.FormOfAddress,
				MembershipId:    m.Id,
				OrganizationRef: nullable(m.Organization),
				Role:            m.Role,
				VotingRight:     m.VotingRight,
				StartDate:       nullable(m.StartDate),
				EndDate:         nullable(m.EndDate),
			})
		}
	}

	n.tel.ReportCount(report_normalize_persons, int64(len(rows)))
	return rows
}

// OrganizationRefs returns the distinct organization references of rows in first-seen order.
func OrganizationRefs(rows []MembershipRow) []string {
	seen := map[string]struct{}{}
	var refs []string
	for _, row := range rows {
		if row.OrganizationRef == nil {
			continue
		}
		ref := *row.OrganizationRef
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// NormalizeOrganizations fetches every organization referenced by rows once and returns one
// row per organization in first-seen reference order. Organizations that fail to fetch are
// reported and left out. The only error returned is the context's.
func (n Normalizer) NormalizeOrganizations(ctx context.Context, rows []MembershipRow) ([]OrganizationRow, error) {
	refs := OrganizationRefs(rows)
	fetched := make([]*OrganizationRow, len(refs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(n.workers)
	for i, ref := range refs {
		group.Go(func() error {
			org, err := oparl.FetchInto[oparl.Organization](groupCtx, n.fetcher, ref)
			if err != nil {
				n.tel.ReportWarning(report_normalize_organizations, err, ref)
				return nil
			}
			fetched[i] = organizationRow(ref, org)
			return nil
		})
	}
	// the workers never fail, only the context can stop them early
	_ = group.Wait()

	out := make([]OrganizationRow, 0, len(fetched))
	for _, org := range fetched {
		if org != nil {
			out = append(out, *org)
		}
	}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}

	n.tel.ReportCount(report_normalize_organizations, int64(len(out)))
	return out, nil
}

func organizationRow(ref string, org oparl.Organization) *OrganizationRow {
	id := ref
	if org.Id != nil && *org.Id != "" {
		id = *org.Id
	}
	return &OrganizationRow{
		Ref:              ref,
		Id:               id,
		Name:             org.Name,
		ShortName:        org.ShortName,
		OrganizationType: org.OrganizationType,
		Classification:   org.Classification,
		StartDate:        nullable(org.StartDate),
		EndDate:          nullable(org.EndDate),
	}
}
