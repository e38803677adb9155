package council

import (
	"bvvassist-backend/lib/textutil"
	"errors"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNoFormOfAddress is returned by the gender views when not a single row carries a form
	// of address.
	ErrNoFormOfAddress = errors.New("council: no row has a form of address")
	// ErrNoStartDate is returned by GenderHistory when no plenary membership has a readable
	// start date to anchor the year range.
	ErrNoStartDate = errors.New("council: no plenary membership has a start date")
)

// DefaultPlenaryClassifications are the classification labels the districts use for the
// assembly itself.
var DefaultPlenaryClassifications = []string{
	"BVV",
	"Bezirksparlament",
	"Bezirk",
	"Bezirksverordnetenversammlung",
	"Bezirksverordnete",
	"Parlament",
	"Stadtbezirk",
}

// Classifier tells the plenary assembly apart from committees and factions.
type Classifier struct {
	plenary map[string]struct{}
}

// NewClassifier matches the given classification labels exactly. An empty list falls back to
// DefaultPlenaryClassifications.
func NewClassifier(classifications []string) Classifier {
	if len(classifications) == 0 {
		classifications = DefaultPlenaryClassifications
	}
	plenary := make(map[string]struct{}, len(classifications))
	for _, c := range classifications {
		plenary[strings.TrimSpace(c)] = struct{}{}
	}
	return Classifier{plenary: plenary}
}

// IsPlenary reports whether row belongs to the assembly. Rows without organization or
// classification never match.
func (c Classifier) IsPlenary(row MemberRow) bool {
	classification := row.Classification()
	if classification == nil {
		return false
	}
	_, ok := c.plenary[strings.TrimSpace(*classification)]
	return ok
}

// Plenary keeps the rows that belong to the assembly.
func (c Classifier) Plenary(rows []MemberRow) []MemberRow {
	var out []MemberRow
	for _, row := range rows {
		if c.IsPlenary(row) {
			out = append(out, row)
		}
	}
	return out
}

var factionTokens = []string{"grünen", "grüne", "spd", "linke", "cdu", "fdp", "afd", "bsw", "fraktion "}

// IsFaction guesses from an organization name whether it is a party faction.
func IsFaction(organizationName string) bool {
	return textutil.MatchName(organizationName, factionTokens)
}

// OrganizationCount is the number of current memberships of one organization.
type OrganizationCount struct {
	Organization string `json:"organization"`
	Members      int    `json:"members"`
	IsFaction    bool   `json:"isFaction"`
}

// CountCurrentMembers counts the memberships in current per organization name, ascending by
// count and then by name. Rows without a resolved organization name are not counted.
func CountCurrentMembers(current []MemberRow) []OrganizationCount {
	counts := map[string]int{}
	for _, row := range current {
		name := row.OrganizationName()
		if name == nil {
			continue
		}
		counts[*name]++
	}

	out := make([]OrganizationCount, 0, len(counts))
	for name, members := range counts {
		out = append(out, OrganizationCount{
			Organization: name,
			Members:      members,
			IsFaction:    IsFaction(name),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Members != out[j].Members {
			return out[i].Members < out[j].Members
		}
		return out[i].Organization < out[j].Organization
	})
	return out
}

// PlenaryMemberNames returns the sorted distinct names of the current plenary members. Names
// that differ only in case or whitespace count once, the first spelling is kept.
func PlenaryMemberNames(current []MemberRow, classifier Classifier) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, row := range classifier.Plenary(current) {
		if row.Name == nil {
			continue
		}
		key := textutil.NormalizeName(*row.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, *row.Name)
	}
	sort.Strings(names)
	return names
}

type gender int

const (
	genderUnknown gender = iota
	genderFemale
	genderMale
)

func genderOf(formOfAddress *string) gender {
	if formOfAddress == nil {
		return genderUnknown
	}
	switch strings.TrimSpace(*formOfAddress) {
	case "Frau":
		return genderFemale
	case "Herr":
		return genderMale
	default:
		return genderUnknown
	}
}

func anyFormOfAddress(rows []MemberRow) bool {
	for _, row := range rows {
		if row.FormOfAddress != nil {
			return true
		}
	}
	return false
}

// GenderYear is the gender distribution of the assembly in one year. Percentages are shares
// of the members whose form of address maps to a gender, rounded to one decimal.
type GenderYear struct {
	Year          int     `json:"year"`
	FemalePercent float64 `json:"femalePercent"`
	MalePercent   float64 `json:"malePercent"`
	Female        int     `json:"female"`
	Male          int     `json:"male"`
}

// GenderHistory computes the gender distribution of the plenary memberships in rows for every
// year from the earliest start date up to toYear.
func GenderHistory(rows []MemberRow, classifier Classifier, toYear int) ([]GenderYear, error) {
	plenary := classifier.Plenary(rows)
	if !anyFormOfAddress(plenary) {
		return nil, ErrNoFormOfAddress
	}

	fromYear := math.MaxInt
	for _, row := range plenary {
		year, ok := startYear(row.MembershipRow)
		if ok && year < fromYear {
			fromYear = year
		}
	}
	if fromYear == math.MaxInt {
		return nil, ErrNoStartDate
	}

	var history []GenderYear
	for year := fromYear; year <= toYear; year++ {
		entry := GenderYear{Year: year}
		for _, row := range plenary {
			if !ActiveInYear(row.MembershipRow, year) {
				continue
			}
			switch genderOf(row.FormOfAddress) {
			case genderFemale:
				entry.Female++
			case genderMale:
				entry.Male++
			}
		}
		if total := entry.Female + entry.Male; total > 0 {
			entry.FemalePercent = round(float64(entry.Female)/float64(total)*100, 1)
			entry.MalePercent = round(float64(entry.Male)/float64(total)*100, 1)
		}
		history = append(history, entry)
	}
	return history, nil
}

// RoleAverages is the mean number of current roles per person by gender, rounded to two
// decimals. A gender without members averages 0.
type RoleAverages struct {
	Female        float64 `json:"female"`
	Male          float64 `json:"male"`
	FemalePersons int     `json:"femalePersons"`
	MalePersons   int     `json:"malePersons"`
}

// AverageRolesByGender groups current by person name and form of address and averages the
// number of memberships per person for each gender. Names are compared by NormalizeName.
func AverageRolesByGender(current []MemberRow) (RoleAverages, error) {
	if !anyFormOfAddress(current) {
		return RoleAverages{}, ErrNoFormOfAddress
	}

	type personKey struct {
		gender gender
		name   string
	}
	roles := map[personKey]int{}
	for _, row := range current {
		g := genderOf(row.FormOfAddress)
		if g == genderUnknown || row.Name == nil {
			continue
		}
		roles[personKey{gender: g, name: textutil.NormalizeName(*row.Name)}]++
	}

	var femaleRoles, maleRoles int
	var out RoleAverages
	for key, count := range roles {
		switch key.gender {
		case genderFemale:
			out.FemalePersons++
			femaleRoles += count
		case genderMale:
			out.MalePersons++
			maleRoles += count
		}
	}
	if out.FemalePersons > 0 {
		out.Female = round(float64(femaleRoles)/float64(out.FemalePersons), 2)
	}
	if out.MalePersons > 0 {
		out.Male = round(float64(maleRoles)/float64(out.MalePersons), 2)
	}
	return out, nil
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
