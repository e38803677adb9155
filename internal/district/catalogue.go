package district

import (
	"bvvassist-backend/lib/textutil"
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

// ErrUnknownDistrict is returned when user input resolves to no district.
var ErrUnknownDistrict = errors.New("district: unknown district")

// minSimilarity is the lowest Jaro-Winkler similarity accepted as a typo of a district slug.
const minSimilarity = 0.85

// District is one of the Berlin districts whose assembly publishes an OParl endpoint.
type District struct {
	// Slug is the lowercase ascii name used in the endpoint host.
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func newDistrict(name string) District {
	return District{Slug: textutil.Slug(name), Name: name}
}

// All lists the districts in the order they are presented.
var All = []District{
	newDistrict("Mitte"),
	newDistrict("Charlottenburg-Wilmersdorf"),
	newDistrict("Friedrichshain-Kreuzberg"),
	newDistrict("Lichtenberg"),
	newDistrict("Marzahn-Hellersdorf"),
	newDistrict("Neukölln"),
	newDistrict("Pankow"),
	newDistrict("Reinickendorf"),
	newDistrict("Steglitz-Zehlendorf"),
	newDistrict("Tempelhof-Schöneberg"),
	newDistrict("Treptow-Köpenick"),
}

// SystemUrl fills the district slug into template, which holds a single %s.
func (d District) SystemUrl(template string) string {
	return fmt.Sprintf(template, d.Slug)
}

// Resolve finds the district meant by input. Input may be a slug, a display name with or
// without umlauts, or a close misspelling of either.
func Resolve(input string) (District, error) {
	slug := textutil.Slug(input)
	if slug == "" {
		return District{}, fmt.Errorf("%w: empty name", ErrUnknownDistrict)
	}

	for _, d := range All {
		if d.Slug == slug {
			return d, nil
		}
	}

	// "Neukölln" and "neukolln" should both find "neukoelln"
	compact := strings.ReplaceAll(slug, "-", "")
	var best District
	var bestSimilarity float64
	for _, d := range All {
		candidate := strings.ReplaceAll(d.Slug, "-", "")
		similarity := matchr.JaroWinkler(compact, candidate, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = d
		}
	}
	if bestSimilarity < minSimilarity {
		return District{}, fmt.Errorf("%w: %q", ErrUnknownDistrict, input)
	}
	return best, nil
}
