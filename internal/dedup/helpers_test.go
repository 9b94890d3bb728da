package dedup

import "strings"

func ptrFloat(v float64) *float64 { return &v }

func ptrInt(v int) *int { return &v }

func difficulties(n int) []Difficulty {
	all := []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExpert, DifficultyExpertPlus}
	out := make([]Difficulty, n)
	for i := range out {
		out[i] = all[i%len(all)]
	}
	return out
}

func record(hash, title, author string, diffs int) Record {
	return Record{
		Hash:         hash,
		Path:         "/maps/" + hash + "-" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Title:        title,
		Author:       author,
		Difficulties: difficulties(diffs),
	}
}

// baseTitle normalizes to a 29-rune key part; with an empty author the full
// key is 30 runes, so each substituted rune costs 1/30 similarity.
const baseTitle = "abcdefghijklmnopqrstuvwxyz012"

// substitutes never occur in baseTitle, so each substitution adds exactly one edit.
var substitutes = []rune("øæåçñéèêëîïôöûü")

// variant replaces the runes of title at the given positions.
func variant(title string, positions ...int) string {
	runes := []rune(title)
	for i, pos := range positions {
		runes[pos] = substitutes[i%len(substitutes)]
	}
	return string(runes)
}

func hashes(c Cluster) []string {
	out := make([]string, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Record.Hash
	}
	return out
}
