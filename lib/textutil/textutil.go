package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases name and removes all whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchName checks if any of the lowercase matchers occurs in name. Matchers are compared
// against the lowercased name with its whitespace kept, so a matcher like "fraktion " only hits
// when a word follows.
func MatchName(name string, matchers []string) bool {
	name = strings.ToLower(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

var umlautReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
)

// FoldUmlauts spells out german umlauts the way the district urls do ("Köpenick" -> "Koepenick").
func FoldUmlauts(s string) string {
	return umlautReplacer.Replace(s)
}

// Slug lowercases s, folds umlauts and joins the words with dashes.
func Slug(s string) string {
	s = strings.ToLower(FoldUmlauts(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

// Words splits s into lowercase words, everything that is not a letter or a digit separates
// two words.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
