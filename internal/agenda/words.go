package agenda

import (
	"bvvassist-backend/lib/textutil"
	"sort"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, word := range []string{
		"der", "die", "das", "und", "zur", "von", "den", "im", "des", "aus", "einer",
		"zu", "auf", "für", "mit", "nicht", "bei", "über", "als", "es", "dem", "eine",
		"werden", "oder", "an", "ein", "haben", "nach", "mehr", "dass", "ist",
		"am", "in", "auch", "zum", "liegen", "keine", "wie", "ohne", "vor", "gegen",
		"vom", "beim", "kein",
	} {
		stopwords[word] = struct{}{}
	}
}

// WordCount is how often a word occurs across agenda item names.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TopWords counts the words of names, leaving out german stop words, numbers and single
// letters, and returns the limit most frequent ones. Ties are ordered alphabetically, a limit
// below 1 returns every word.
func TopWords(names []string, limit int) []WordCount {
	counts := map[string]int{}
	for _, name := range names {
		for _, word := range textutil.Words(name) {
			if len([]rune(word)) < 2 || isNumber(word) {
				continue
			}
			if _, stop := stopwords[word]; stop {
				continue
			}
			counts[word]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, WordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func isNumber(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
