package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	testCases := []struct {
		in   string
		slug string
	}{
		{in: "Mitte", slug: "mitte"},
		{in: "Neukölln", slug: "neukoelln"},
		{in: "Treptow-Köpenick", slug: "treptow-koepenick"},
		{in: "  Tempelhof - Schöneberg ", slug: "tempelhof-schoeneberg"},
		{in: "", slug: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.slug, Slug(test.in), test.in)
	}
}

func TestMatchName(t *testing.T) {
	matchers := []string{"spd", "fraktion "}

	require.True(t, MatchName("SPD-Fraktion", matchers))
	require.True(t, MatchName("Fraktion Die Partei", matchers))
	require.False(t, MatchName("Fraktionslose", matchers))
	require.False(t, MatchName("Ausschuss für Verkehr", matchers))
}

func TestWords(t *testing.T) {
	require.Equal(
		t,
		[]string{"antrag", "zur", "kita", "versorgung", "2024"},
		Words("Antrag zur Kita-Versorgung (2024)"),
	)
	require.Empty(t, Words(" - "))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "maxmustermann", NormalizeName("  Max \n Mustermann"))
}
