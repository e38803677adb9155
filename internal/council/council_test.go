package council

import (
	"bvvassist-backend/internal/components/telemetry"
	"bvvassist-backend/internal/scrapers/oparl"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned documents by url and counts the fetches.
type fakeFetcher struct {
	mutex     sync.Mutex
	documents map[string]string
	calls     map[string]int
}

func newFakeFetcher(documents map[string]string) *fakeFetcher {
	return &fakeFetcher{documents: documents, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	f.mutex.Lock()
	f.calls[url]++
	f.mutex.Unlock()

	doc, ok := f.documents[url]
	if !ok {
		return nil, &oparl.FetchError{Url: url, Kind: oparl.FETCH_STATUS, StatusCode: 404}
	}
	return json.RawMessage(doc), nil
}

func str(s string) *string {
	return &s
}

func raw(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(docs))
	for i, doc := range docs {
		out[i] = json.RawMessage(doc)
	}
	return out
}

func TestNormalizePersons(t *testing.T) {
	tel := &telemetry.Recorder{}
	n := NewNormalizer(tel, newFakeFetcher(nil), 1)

	rows := n.NormalizePersons(raw(
		`{"id": "p0", "name": "Ohne Mitgliedschaft"}`,
		`{
			"id": "p1",
			"name": "Erika Mustermann",
			"familyName": "Mustermann",
			"givenName": "Erika",
			"formOfAddress": "Frau",
			"membership": [
				{"id": "m1", "organization": "o1", "role": "Mitglied", "votingRight": true, "startDate": "2021-11-04"},
				{"id": "m2", "organization": "o2", "startDate": "2016-10-27", "endDate": "2021-11-03"}
			]
		}`,
	))

	expected := []MembershipRow{
		{
			PersonId:        "p1",
			Name:            str("Erika Mustermann"),
			FamilyName:      str("Mustermann"),
			GivenName:       str("Erika"),
			FormOfAddress:   str("Frau"),
			MembershipId:    str("m1"),
			OrganizationRef: str("o1"),
			Role:            str("Mitglied"),
			VotingRight:     func() *bool { b := true; return &b }(),
			StartDate:       str("2021-11-04"),
		},
		{
			PersonId:        "p1",
			Name:            str("Erika Mustermann"),
			FamilyName:      str("Mustermann"),
			GivenName:       str("Erika"),
			FormOfAddress:   str("Frau"),
			MembershipId:    str("m2"),
			OrganizationRef: str("o2"),
			StartDate:       str("2016-10-27"),
			EndDate:         str("2021-11-03"),
		},
	}

	diff := cmp.Diff(expected, rows)
	require.Empty(t, diff)
	require.Empty(t, tel.Reports("warning", ""))
}

func TestNormalizePersonsToleratesBrokenRecords(t *testing.T) {
	tel := &telemetry.Recorder{}
	n := NewNormalizer(tel, newFakeFetcher(nil), 1)

	rows := n.NormalizePersons(raw(
		`{"id": "p1", "name": 42, "membership": [{"organization": "o1"}]}`,
		`{"id": "p2", "membership": [
			{"organization": "o1", "endDate": ""},
			{"organization": ["not", "a", "url"]},
			{"votingRight": "ja"}
		]}`,
		`{"id": "p3", "membership": []}`,
	))

	require.Len(t, rows, 1)
	require.Equal(t, "p2", rows[0].PersonId)
	require.Nil(t, rows[0].Name)
	require.Nil(t, rows[0].EndDate)
	require.True(t, rows[0].Current())
	require.Len(t, tel.Reports("warning", report_normalize_persons), 3)
}

func TestNormalizeOrganizations(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{
		"https://bvv.example/org/1": `{"id": "https://bvv.example/org/1", "name": "BVV Mitte", "classification": "BVV"}`,
		"https://bvv.example/org/2": `{"name": "Ausschuss für Verkehr", "classification": "Ausschuss", "endDate": ""}`,
		"https://bvv.example/org/3": `{"id": "https://bvv.example/org/3", "name": "SPD-Fraktion", "classification": "Fraktion"}`,
	})
	tel := &telemetry.Recorder{}
	n := NewNormalizer(tel, fetcher, 4)

	rows := []MembershipRow{
		{PersonId: "p1", OrganizationRef: str("https://bvv.example/org/3")},
		{PersonId: "p1", OrganizationRef: str("https://bvv.example/org/1")},
		{PersonId: "p2", OrganizationRef: str("https://bvv.example/org/missing")},
		{PersonId: "p2", OrganizationRef: str("https://bvv.example/org/1")},
		{PersonId: "p3"},
		{PersonId: "p3", OrganizationRef: str("https://bvv.example/org/2")},
	}

	orgs, err := n.NormalizeOrganizations(context.Background(), rows)
	require.NoError(t, err)

	expected := []OrganizationRow{
		{
			Ref:            "https://bvv.example/org/3",
			Id:             "https://bvv.example/org/3",
			Name:           str("SPD-Fraktion"),
			Classification: str("Fraktion"),
		},
		{
			Ref:            "https://bvv.example/org/1",
			Id:             "https://bvv.example/org/1",
			Name:           str("BVV Mitte"),
			Classification: str("BVV"),
		},
		{
			Ref:            "https://bvv.example/org/2",
			Id:             "https://bvv.example/org/2",
			Name:           str("Ausschuss für Verkehr"),
			Classification: str("Ausschuss"),
		},
	}
	diff := cmp.Diff(expected, orgs)
	require.Empty(t, diff)

	for url, calls := range fetcher.calls {
		require.Equal(t, 1, calls, url)
	}
	require.Len(t, tel.Reports("warning", report_normalize_organizations), 1)
}

func TestNormalizeOrganizationsCancelled(t *testing.T) {
	n := NewNormalizer(&telemetry.Recorder{}, newFakeFetcher(nil), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.NormalizeOrganizations(ctx, []MembershipRow{{OrganizationRef: str("o1")}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMergeKeepsUnresolvedMemberships(t *testing.T) {
	rows := []MembershipRow{
		{PersonId: "p1", OrganizationRef: str("o1")},
		{PersonId: "p2", OrganizationRef: str("gone")},
		{PersonId: "p3"},
	}
	orgs := []OrganizationRow{{Ref: "o1", Id: "o1", Name: str("BVV")}}

	merged := Merge(rows, orgs)
	require.Len(t, merged, 3)
	require.Equal(t, "BVV", *merged[0].OrganizationName())
	require.Nil(t, merged[1].Organization)
	require.Nil(t, merged[1].Classification())
	require.Nil(t, merged[2].Organization)
	require.Equal(t, "p2", merged[1].PersonId)
}

func TestCurrentMembersScenario(t *testing.T) {
	orgs := []OrganizationRow{
		{Ref: "o1", Id: "o1", Classification: str("BVV")},
		{Ref: "o2", Id: "o2", Classification: str("Ausschuss")},
	}
	rows := []MembershipRow{
		{PersonId: "first", OrganizationRef: str("o1")},
		{PersonId: "second", OrganizationRef: str("o1"), EndDate: str("2020-01-01")},
		{PersonId: "third", OrganizationRef: str("o2")},
	}

	current := MergeCurrent(rows, orgs)
	require.Len(t, current, 2)
	require.Equal(t, "first", current[0].PersonId)
	require.Equal(t, "third", current[1].PersonId)

	classifier := NewClassifier(nil)
	require.True(t, classifier.IsPlenary(current[0]))
	require.False(t, classifier.IsPlenary(current[1]))
}

func TestClassifier(t *testing.T) {
	classifier := NewClassifier(DefaultPlenaryClassifications)

	testCases := []struct {
		classification *string
		plenary        bool
	}{
		{classification: str("BVV"), plenary: true},
		{classification: str("Bezirksverordnetenversammlung"), plenary: true},
		{classification: str(" Stadtbezirk "), plenary: true},
		{classification: str("Ausschuss"), plenary: false},
		{classification: str("bvv"), plenary: false},
		{classification: nil, plenary: false},
	}

	for _, test := range testCases {
		row := MemberRow{Organization: &OrganizationRow{Classification: test.classification}}
		require.Equal(t, test.plenary, classifier.IsPlenary(row), test.classification)
	}
	require.False(t, classifier.IsPlenary(MemberRow{}))

	custom := NewClassifier([]string{"Gemeinderat"})
	require.True(t, custom.IsPlenary(MemberRow{Organization: &OrganizationRow{Classification: str("Gemeinderat")}}))
	require.False(t, custom.IsPlenary(MemberRow{Organization: &OrganizationRow{Classification: str("BVV")}}))
}

func member(name, formOfAddress, orgName, classification, start string, end *string) MemberRow {
	row := MemberRow{
		MembershipRow: MembershipRow{
			PersonId:  name,
			Name:      str(name),
			StartDate: str(start),
			EndDate:   end,
		},
		Organization: &OrganizationRow{
			Ref:            orgName,
			Id:             orgName,
			Name:           str(orgName),
			Classification: str(classification),
		},
	}
	if formOfAddress != "" {
		row.FormOfAddress = str(formOfAddress)
	}
	return row
}

func TestCountCurrentMembers(t *testing.T) {
	current := []MemberRow{
		member("A", "Frau", "BVV Mitte", "BVV", "2021-11-04", nil),
		member("B", "Herr", "BVV Mitte", "BVV", "2021-11-04", nil),
		member("C", "Herr", "BVV Mitte", "BVV", "2021-11-04", nil),
		member("A", "Frau", "Fraktion Die Linke", "Fraktion", "2021-11-04", nil),
		member("B", "Herr", "SPD-Fraktion", "Fraktion", "2021-11-04", nil),
		member("C", "Herr", "Ausschuss für Verkehr", "Ausschuss", "2021-11-04", nil),
		member("A", "Frau", "Ausschuss für Verkehr", "Ausschuss", "2021-11-04", nil),
		{MembershipRow: MembershipRow{PersonId: "D"}},
	}

	expected := []OrganizationCount{
		{Organization: "Fraktion Die Linke", Members: 1, IsFaction: true},
		{Organization: "SPD-Fraktion", Members: 1, IsFaction: true},
		{Organization: "Ausschuss für Verkehr", Members: 2, IsFaction: false},
		{Organization: "BVV Mitte", Members: 3, IsFaction: false},
	}
	diff := cmp.Diff(expected, CountCurrentMembers(current))
	require.Empty(t, diff)
}

func TestIsFaction(t *testing.T) {
	testCases := []struct {
		name    string
		faction bool
	}{
		{name: "Fraktion BÜNDNIS 90/DIE GRÜNEN", faction: true},
		{name: "CDU-Fraktion", faction: true},
		{name: "AfD", faction: true},
		{name: "Fraktion Die PARTEI", faction: true},
		{name: "Fraktionsvorsitzende", faction: false},
		{name: "Ausschuss für Schule", faction: false},
	}
	for _, test := range testCases {
		require.Equal(t, test.faction, IsFaction(test.name), test.name)
	}
}

func TestPlenaryMemberNames(t *testing.T) {
	current := []MemberRow{
		member("Zoe", "Frau", "BVV", "BVV", "2021-11-04", nil),
		member("Anton", "Herr", "BVV", "BVV", "2021-11-04", nil),
		member("Anton", "Herr", "BVV", "Bezirksverordnetenversammlung", "2021-11-04", nil),
		member(" ANTON ", "Herr", "BVV", "BVV", "2021-11-04", nil),
		member("Berta", "Frau", "Ausschuss", "Ausschuss", "2021-11-04", nil),
	}
	require.Equal(t, []string{"Anton", "Zoe"}, PlenaryMemberNames(current, NewClassifier(nil)))
}

func TestActiveInYear(t *testing.T) {
	testCases := []struct {
		start  *string
		end    *string
		year   int
		active bool
	}{
		{start: str("2016-10-27"), end: str("2021-11-03"), year: 2016, active: true},
		{start: str("2016-10-27"), end: str("2021-11-03"), year: 2021, active: true},
		{start: str("2016-10-27"), end: str("2021-11-03"), year: 2022, active: false},
		{start: str("2016-10-27"), end: str("2021-11-03"), year: 2015, active: false},
		{start: str("2021-11-04"), end: nil, year: 2030, active: true},
		{start: str("2021-11-04T00:00:00+01:00"), end: nil, year: 2021, active: true},
		{start: str("unbekannt"), end: nil, year: 2021, active: false},
		{start: nil, end: nil, year: 2021, active: false},
		{start: str("2021-11-04"), end: str("offen"), year: 2024, active: true},
	}

	for i, test := range testCases {
		row := MembershipRow{StartDate: test.start, EndDate: test.end}
		require.Equal(t, test.active, ActiveInYear(row, test.year), i)
	}
}

func TestGenderHistory(t *testing.T) {
	rows := []MemberRow{
		member("A", "Frau", "BVV", "BVV", "2016-10-27", str("2021-11-03")),
		member("B", " Herr ", "BVV", "BVV", "2016-10-27", nil),
		member("C", "Herr", "BVV", "BVV", "2017-01-01", str("2017-06-30")),
		member("D", "Frau", "BVV", "BVV", "2021-11-04", nil),
		member("E", "Divers", "BVV", "BVV", "2021-11-04", nil),
		member("F", "Frau", "Ausschuss", "Ausschuss", "2010-01-01", nil),
	}

	history, err := GenderHistory(rows, NewClassifier(nil), 2022)
	require.NoError(t, err)

	expected := []GenderYear{
		{Year: 2016, FemalePercent: 50, MalePercent: 50, Female: 1, Male: 1},
		{Year: 2017, FemalePercent: 33.3, MalePercent: 66.7, Female: 1, Male: 2},
		{Year: 2018, FemalePercent: 50, MalePercent: 50, Female: 1, Male: 1},
		{Year: 2019, FemalePercent: 50, MalePercent: 50, Female: 1, Male: 1},
		{Year: 2020, FemalePercent: 50, MalePercent: 50, Female: 1, Male: 1},
		{Year: 2021, FemalePercent: 66.7, MalePercent: 33.3, Female: 2, Male: 1},
		{Year: 2022, FemalePercent: 50, MalePercent: 50, Female: 1, Male: 1},
	}
	diff := cmp.Diff(expected, history)
	require.Empty(t, diff)
}

func TestGenderHistoryErrors(t *testing.T) {
	classifier := NewClassifier(nil)

	_, err := GenderHistory([]MemberRow{
		member("A", "", "BVV", "BVV", "2016-10-27", nil),
	}, classifier, 2022)
	require.ErrorIs(t, err, ErrNoFormOfAddress)

	_, err = GenderHistory([]MemberRow{
		member("A", "Frau", "BVV", "BVV", "", nil),
	}, classifier, 2022)
	require.ErrorIs(t, err, ErrNoStartDate)

	_, err = GenderHistory(nil, classifier, 2022)
	require.ErrorIs(t, err, ErrNoFormOfAddress)
}

func TestAverageRolesByGender(t *testing.T) {
	current := []MemberRow{
		member("A", "Frau", "BVV", "BVV", "2021-11-04", nil),
		member("A", "Frau", "Ausschuss 1", "Ausschuss", "2021-11-04", nil),
		member("A", "Frau", "Ausschuss 2", "Ausschuss", "2021-11-04", nil),
		member("B", "Frau", "BVV", "BVV", "2021-11-04", nil),
		member("C", "Herr", "BVV", "BVV", "2021-11-04", nil),
		member(" c", "Herr", "Ausschuss 1", "Ausschuss", "2021-11-04", nil),
		member("D", "Herr", "BVV", "BVV", "2021-11-04", nil),
		member("E", "Herr", "BVV", "BVV", "2021-11-04", nil),
		member("F", "", "BVV", "BVV", "2021-11-04", nil),
	}

	averages, err := AverageRolesByGender(current)
	require.NoError(t, err)
	require.Equal(t, RoleAverages{
		Female:        2,
		Male:          1.33,
		FemalePersons: 2,
		MalePersons:   3,
	}, averages)

	_, err = AverageRolesByGender([]MemberRow{member("F", "", "BVV", "BVV", "2021-11-04", nil)})
	require.ErrorIs(t, err, ErrNoFormOfAddress)
}
