package dedup

import (
	"math"

	"mapcull/internal/textutil"
)

// Matcher scores two normalized keys in [0, 1], where 1 means identical.
type Matcher interface {
	Similarity(a, b string) float64
}

// SongGrouper clusters differently encoded versions of the same song.
type SongGrouper struct {
	policy  Policy
	matcher Matcher
}

// NewSongGrouper builds a grouper. A nil matcher selects Levenshtein
// similarity.
func NewSongGrouper(policy Policy, matcher Matcher) *SongGrouper {
	if matcher == nil {
		matcher = textutil.LevenshteinMatcher{}
	}
	return &SongGrouper{policy: policy.normalized(), matcher: matcher}
}

// Group runs a single greedy pass in input order. Each record not yet
// clustered seeds a candidate cluster and absorbs later unclustered records
// that match it; clusters with at least two members are returned, labelled
// SimilarityHigh.
func (g *SongGrouper) Group(records []Record) []Cluster {
	if len(records) < 2 {
		return nil
	}

	keys := make([]string, len(records))
	for i, record := range records {
		keys[i] = textutil.NormalizeKey(record.Title, record.Author)
	}

	clustered := make(map[string]struct{}, len(records))
	var clusters []Cluster
	for i, seed := range records {
		if _, done := clustered[seed.Hash]; done {
			continue
		}
		clustered[seed.Hash] = struct{}{}
		cluster := newCluster(seed, SimilarityHigh)

		for j := i + 1; j < len(records); j++ {
			candidate := records[j]
			if _, done := clustered[candidate.Hash]; done {
				continue
			}
			if !g.accepts(seed, candidate, keys[i], keys[j]) {
				continue
			}
			cluster.Members = append(cluster.Members, ScoredRecord{Record: candidate})
			clustered[candidate.Hash] = struct{}{}
		}

		if len(cluster.Members) >= 2 {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

// accepts reports whether candidate joins seed's cluster. A contradicting
// tempo or duration rejects medium and low tier matches; high tier matches
// tolerate it.
func (g *SongGrouper) accepts(seed, candidate Record, seedKey, candidateKey string) bool {
	tier, ok := g.policy.Tier(g.matcher.Similarity(seedKey, candidateKey))
	if !ok {
		return false
	}
	if tier == SimilarityHigh {
		return true
	}
	if g.tempoContradicts(seed, candidate) {
		return false
	}
	return !g.durationContradicts(seed, candidate)
}

func (g *SongGrouper) tempoContradicts(seed, candidate Record) bool {
	seedBPM, ok := seed.Tempo()
	if !ok {
		return false
	}
	candidateBPM, ok := candidate.Tempo()
	if !ok {
		return false
	}
	diff := math.Abs(seedBPM - candidateBPM)
	return diff > g.policy.TempoToleranceBPM && diff > seedBPM*g.policy.TempoToleranceRatio
}

func (g *SongGrouper) durationContradicts(seed, candidate Record) bool {
	seedDuration, ok := seed.Duration()
	if !ok {
		return false
	}
	candidateDuration, ok := candidate.Duration()
	if !ok {
		return false
	}
	allowed := max(g.policy.DurationToleranceSeconds, seedDuration*g.policy.DurationToleranceRatio)
	return math.Abs(seedDuration-candidateDuration) > allowed
}
