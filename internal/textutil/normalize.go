package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// disallowedPattern matches every rune that is not a letter, digit, or whitespace.
	disallowedPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	// featuringPattern matches a trailing featured/producer credit.
	featuringPattern = regexp.MustCompile(`(?s)\s(?:feat|ft|featuring|prod|produced\s+by)(?:\s.*)?$`)
	// qualifierPattern matches a trailing version qualifier such as "remix" or "vip".
	qualifierPattern = regexp.MustCompile(`(?s)\s(?:remix|edit|version|mix|vip|cover)(?:\s.*)?$`)
)

// NormalizeKey reduces a title and author to a single comparison key.
// The title and author are normalized independently and joined with one space.
func NormalizeKey(title, author string) string {
	return NormalizeText(title) + " " + NormalizeText(author)
}

// NormalizeText lower-cases s, strips punctuation and symbols, drops any
// trailing featuring credit and version qualifier, and collapses whitespace.
// Empty input yields an empty string.
func NormalizeText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	lowered := strings.Map(foldSpace, cases.Lower(language.Und).String(s))
	cleaned := disallowedPattern.ReplaceAllString(lowered, "")
	cleaned = featuringPattern.ReplaceAllString(cleaned, "")
	cleaned = qualifierPattern.ReplaceAllString(cleaned, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// foldSpace maps every Unicode space (NBSP, ideographic space, thin space...)
// to ASCII space so the patterns above, which use RE2's ASCII \s, see it.
func foldSpace(r rune) rune {
	if unicode.IsSpace(r) {
		return ' '
	}
	return r
}
