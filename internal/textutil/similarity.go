package textutil

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Similarity scores two normalized keys in [0, 1] as
// 1 - levenshtein(a, b) / max(len(a), len(b)), with lengths counted in runes.
// Two empty keys are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	distance := edlib.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// LevenshteinMatcher scores keys with Similarity. It has no state and its
// zero value is ready to use.
type LevenshteinMatcher struct{}

// Similarity implements the matcher contract used by the grouping stage.
func (LevenshteinMatcher) Similarity(a, b string) float64 {
	return Similarity(a, b)
}
