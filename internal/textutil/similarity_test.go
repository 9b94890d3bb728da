package textutil

import (
	"math"
	"testing"
)

func TestSimilarityEmpty(t *testing.T) {
	if got := Similarity("", ""); got != 1.0 {
		t.Errorf("Similarity(\"\", \"\") = %v, want 1.0", got)
	}
}

func TestSimilarityIdentical(t *testing.T) {
	for _, key := range []string{"a", "song artist", "ünïcödé tïtle"} {
		if got := Similarity(key, key); got != 1.0 {
			t.Errorf("Similarity(%q, %q) = %v, want 1.0", key, key, got)
		}
	}
}

func TestSimilarityKnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"one empty", "", "abcd", 0},
		{"single substitution", "kitten", "sitten", 1 - 1.0/6},
		{"classic kitten sitting", "kitten", "sitting", 1 - 3.0/7},
		{"insertion", "song artist", "songs artist", 1 - 1.0/12},
		{"completely different", "abc", "xyz", 0},
		{"multibyte counts runes", "café", "cafe", 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"hello world", "world hello"},
		{"foo x", "foo remix x"},
		{"", "abc"},
		{"ghost artist", "ghosts artists"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for %q/%q: (%v, %v)", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarityBounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "bbbbbbbb"},
		{"short", "a much longer string entirely"},
		{"x", ""},
	}
	for _, p := range pairs {
		got := Similarity(p[0], p[1])
		if got < 0 || got > 1 {
			t.Errorf("Similarity(%q, %q) = %v, want within [0, 1]", p[0], p[1], got)
		}
	}
}

func TestLevenshteinMatcherDelegates(t *testing.T) {
	var m LevenshteinMatcher
	if got, want := m.Similarity("kitten", "sitting"), Similarity("kitten", "sitting"); got != want {
		t.Errorf("LevenshteinMatcher.Similarity = %v, want %v", got, want)
	}
}
