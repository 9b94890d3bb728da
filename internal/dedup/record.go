package dedup

import (
	"math"
	"strings"
)

// Difficulty is one playable difficulty of a map. Only the number of entries
// influences analysis; the tag itself is informational.
type Difficulty string

const (
	DifficultyEasy       Difficulty = "Easy"
	DifficultyNormal     Difficulty = "Normal"
	DifficultyHard       Difficulty = "Hard"
	DifficultyExpert     Difficulty = "Expert"
	DifficultyExpertPlus Difficulty = "ExpertPlus"
)

// ParseDifficulty maps a difficulty label to its tag, ignoring case and
// surrounding whitespace.
func ParseDifficulty(value string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "easy":
		return DifficultyEasy, true
	case "normal":
		return DifficultyNormal, true
	case "hard":
		return DifficultyHard, true
	case "expert":
		return DifficultyExpert, true
	case "expertplus", "expert+":
		return DifficultyExpertPlus, true
	default:
		return "", false
	}
}

// Uploader describes who published a map to the community index.
type Uploader struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Verified bool   `json:"verified,omitempty" yaml:"verified,omitempty"`
}

// Metadata carries optional community signals for a map. Nil numeric fields
// mean "unknown".
type Metadata struct {
	Duration   *float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	UpVotes    *int     `json:"up_votes,omitempty" yaml:"up_votes,omitempty"`
	DownVotes  *int     `json:"down_votes,omitempty" yaml:"down_votes,omitempty"`
	Downloads  *int     `json:"downloads,omitempty" yaml:"downloads,omitempty"`
	Ranked     bool     `json:"ranked,omitempty" yaml:"ranked,omitempty"`
	AltRanked  bool     `json:"alt_ranked,omitempty" yaml:"alt_ranked,omitempty"`
	Curated    bool     `json:"curated,omitempty" yaml:"curated,omitempty"`
	Automapper bool     `json:"automapper,omitempty" yaml:"automapper,omitempty"`
	Uploader   Uploader `json:"uploader,omitzero" yaml:"uploader,omitempty"`
}

// Record is one map in the user's collection. Records are read-only inputs;
// analysis never modifies them.
type Record struct {
	Hash         string       `json:"hash" yaml:"hash"`
	Path         string       `json:"path,omitempty" yaml:"path,omitempty"`
	Title        string       `json:"title" yaml:"title"`
	Author       string       `json:"author" yaml:"author"`
	Mapper       string       `json:"mapper,omitempty" yaml:"mapper,omitempty"`
	BPM          *float64     `json:"bpm,omitempty" yaml:"bpm,omitempty"`
	Difficulties []Difficulty `json:"difficulties,omitempty" yaml:"difficulties,omitempty"`
	Metadata     *Metadata    `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Tempo returns the map tempo when it is known and positive.
func (r Record) Tempo() (float64, bool) {
	return knownPositive(r.BPM)
}

// Duration returns the song length in seconds when it is known and positive.
func (r Record) Duration() (float64, bool) {
	if r.Metadata == nil {
		return 0, false
	}
	return knownPositive(r.Metadata.Duration)
}

func knownPositive(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
