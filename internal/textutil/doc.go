// Package textutil provides the text processing used to compare map records:
// canonical comparison keys and bounded edit-distance similarity.
//
// The primary use cases are:
//   - Reducing a title/author pair to a comparison key that ignores case,
//     punctuation, featured-artist credits, and version qualifiers
//   - Scoring two keys in [0, 1] from their Levenshtein distance
//
// Keys are compared rune by rune, so multi-byte titles count one edit per
// character rather than per byte.
package textutil
