package council

import (
	"encoding/json"
	"strings"
)

// MembershipRow is one membership of one person, carrying the person's name fields.
// Nil fields were absent or null upstream.
type MembershipRow struct {
	PersonId      string  `json:"personId"`
	Name          *string `json:"name"`
	FamilyName    *string `json:"familyName"`
	GivenName     *string `json:"givenName"`
	FormOfAddress *string `json:"formOfAddress"`

	MembershipId *string `json:"membershipId"`
	// OrganizationRef is the url of the organization exactly as the membership links it.
	OrganizationRef *string `json:"organizationRef"`
	Role            *string `json:"role"`
	VotingRight     *bool   `json:"votingRight"`
	StartDate       *string `json:"startDate"`
	// EndDate is nil while the membership is active.
	EndDate *string `json:"endDate"`
}

// Current reports whether the membership has no end date.
func (r MembershipRow) Current() bool {
	return r.EndDate == nil
}

// OrganizationRow is one organization referenced by at least one membership.
type OrganizationRow struct {
	// Ref is the url the organization was fetched from, memberships join on it.
	Ref              string  `json:"ref"`
	Id               string  `json:"id"`
	Name             *string `json:"name"`
	ShortName        *string `json:"shortName"`
	OrganizationType *string `json:"organizationType"`
	Classification   *string `json:"classification"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
}

// MemberRow is a membership left-joined with its organization. Organization is nil when the
// organization could not be resolved.
type MemberRow struct {
	MembershipRow
	Organization *OrganizationRow `json:"organization"`
}

// OrganizationName returns the joined organization's name or nil.
func (m MemberRow) OrganizationName() *string {
	if m.Organization == nil {
		return nil
	}
	return m.Organization.Name
}

// Classification returns the joined organization's classification or nil.
func (m MemberRow) Classification() *string {
	if m.Organization == nil {
		return nil
	}
	return m.Organization.Classification
}

// person mirrors oparl.Person but keeps the memberships raw so that one malformed membership
// does not lose the whole person.
type person struct {
	Id            string             `json:"id"`
	Name          *string            `json:"name"`
	FamilyName    *string            `json:"familyName"`
	GivenName     *string            `json:"givenName"`
	FormOfAddress *string            `json:"formOfAddress"`
	Membership    *[]json.RawMessage `json:"membership"`
}

// nullable maps blank strings to nil, some districts send "" instead of null.
func nullable(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// Merge left-joins rows with orgs on the organization reference. Every row is kept, in order.
func Merge(rows []MembershipRow, orgs []OrganizationRow) []MemberRow {
	index := make(map[string]*OrganizationRow, len(orgs))
	for i := range orgs {
		if _, exists := index[orgs[i].Ref]; exists {
			continue
		}
		index[orgs[i].Ref] = &orgs[i]
	}

	out := make([]MemberRow, len(rows))
	for i, row := range rows {
		out[i] = MemberRow{MembershipRow: row}
		if row.OrganizationRef == nil {
			continue
		}
		org, ok := index[*row.OrganizationRef]
		if ok {
			orgCopy := *org
			out[i].Organization = &orgCopy
		}
	}
	return out
}

// Current keeps the rows whose membership has not ended.
func Current(rows []MemberRow) []MemberRow {
	var out []MemberRow
	for _, row := range rows {
		if row.Current() {
			out = append(out, row)
		}
	}
	return out
}

// MergeCurrent is Merge followed by Current.
func MergeCurrent(rows []MembershipRow, orgs []OrganizationRow) []MemberRow {
	return Current(Merge(rows, orgs))
}
