package oparl

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Every optional field of the upstream documents is a pointer, nil means the district
// omitted the field or sent null. Non-null fields keep the exact upstream value.

// System is the entry document of an OParl endpoint.
type System struct {
	Id   string  `json:"id"`
	Name *string `json:"name"`
	// Body is the url of the body list.
	Body string `json:"body"`
}

// Body is a single council body, for Berlin districts the district assembly.
type Body struct {
	Id           string  `json:"id"`
	Name         *string `json:"name"`
	ShortName    *string `json:"shortName"`
	Person       string  `json:"person"`
	Meeting      string  `json:"meeting"`
	Organization string  `json:"organization"`
}

// BodyList is the document behind System.Body.
type BodyList struct {
	Data []Body `json:"data"`
}

// Links holds the pagination links of a list page.
type Links struct {
	Next *string `json:"next"`
}

// Page is one page of a paginated collection. Data stays nil when the page has no data key.
// Links stays undecoded so that a malformed links value does not cost the page its data.
type Page struct {
	Data  *[]json.RawMessage `json:"data"`
	Links json.RawMessage    `json:"links"`
}

// NextUrl returns the link to the following page or "" when this is the last one. A links
// value that is not an object with a string next is an error.
func (p Page) NextUrl() (string, error) {
	raw := bytes.TrimSpace(p.Links)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var links Links
	err := json.Unmarshal(raw, &links)
	if err != nil {
		return "", err
	}
	if links.Next == nil {
		return "", nil
	}
	return strings.TrimSpace(*links.Next), nil
}

// Person is a single representative.
type Person struct {
	Id            string        `json:"id"`
	Name          *string       `json:"name"`
	FamilyName    *string       `json:"familyName"`
	GivenName     *string       `json:"givenName"`
	FormOfAddress *string       `json:"formOfAddress"`
	Membership    *[]Membership `json:"membership"`
}

// Membership is the affiliation of a person with an organization.
type Membership struct {
	Id           *string `json:"id"`
	Organization *string `json:"organization"`
	Role         *string `json:"role"`
	VotingRight  *bool   `json:"votingRight"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
}

// Organization is a committee, faction or the plenary assembly itself.
type Organization struct {
	Id               *string `json:"id"`
	Name             *string `json:"name"`
	ShortName        *string `json:"shortName"`
	OrganizationType *string `json:"organizationType"`
	Classification   *string `json:"classification"`
	StartDate        *string `json:"startDate"`
	EndDate          *string `json:"endDate"`
}

// Meeting is a single session of an organization.
type Meeting struct {
	// Id is also the url of the meeting document.
	Id       string    `json:"id"`
	Name     *string   `json:"name"`
	Start    *string   `json:"start"`
	End      *string   `json:"end"`
	Location *Location `json:"location"`
}

// Location is embedded in a meeting document. Some districts send a bare url instead of an
// object, which decodes into a Location with only Ref set.
type Location struct {
	Ref         string
	Description *string
}

func (l *Location) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &l.Ref)
	}
	var embedded struct {
		Id          string  `json:"id"`
		Description *string `json:"description"`
	}
	err := json.Unmarshal(trimmed, &embedded)
	if err != nil {
		return err
	}
	l.Ref = embedded.Id
	l.Description = embedded.Description
	return nil
}

// LooseString decodes JSON strings and numbers alike, a few installations emit agenda
// numbers as integers.
type LooseString string

func (s *LooseString) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		err := json.Unmarshal(trimmed, &str)
		if err != nil {
			return err
		}
		*s = LooseString(str)
		return nil
	}
	*s = LooseString(trimmed)
	return nil
}

// StringPtr converts an optional LooseString into an optional string.
func (s *LooseString) StringPtr() *string {
	if s == nil {
		return nil
	}
	str := string(*s)
	return &str
}
