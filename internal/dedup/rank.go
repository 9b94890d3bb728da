package dedup

import (
	"cmp"
	"math"
	"slices"
)

// Ranker scores cluster members and picks the one to keep.
type Ranker struct {
	policy Policy
}

// NewRanker builds a ranker from policy, filling unset weights with defaults.
func NewRanker(policy Policy) Ranker {
	return Ranker{policy: policy.normalized()}
}

// Score computes the retention score of a single record. Missing metadata
// counts as zero; a non-finite result is clamped to zero.
func (r Ranker) Score(record Record) float64 {
	p := r.policy
	var score float64
	if meta := record.Metadata; meta != nil {
		votes := float64(intValue(meta.UpVotes) - intValue(meta.DownVotes))
		score = votes*p.VoteWeight + float64(intValue(meta.Downloads))/p.DownloadDivisor
		if meta.Ranked || meta.AltRanked {
			score += p.RankedBonus
		}
		if meta.Curated {
			score += p.CuratedBonus
		}
		if meta.Uploader.Verified {
			score += p.VerifiedBonus
		}
		if meta.Automapper {
			score -= p.AutomapperPenalty
		}
	}
	if len(record.Difficulties) >= p.DifficultyBonusMin {
		score += p.DifficultyBonus
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

// EstimateSize returns the abstract storage footprint of a record.
func (r Ranker) EstimateSize(record Record) int {
	return r.policy.SizeBase + r.policy.SizePerDifficulty*len(record.Difficulties)
}

// Rank scores every member of every cluster, stable-sorts members by
// descending score, marks the first member recommended, and fills in size
// estimates. The clusters are updated in place and returned.
func (r Ranker) Rank(clusters []Cluster) []Cluster {
	for i := range clusters {
		cluster := &clusters[i]
		total := 0
		for j := range cluster.Members {
			member := &cluster.Members[j]
			member.Score = r.Score(member.Record)
			member.EstimatedSize = r.EstimateSize(member.Record)
			member.Recommended = false
			total += member.EstimatedSize
		}
		slices.SortStableFunc(cluster.Members, func(a, b ScoredRecord) int {
			return cmp.Compare(b.Score, a.Score)
		})
		if len(cluster.Members) > 0 {
			cluster.Members[0].Recommended = true
		}
		cluster.TotalSize = total
	}
	return clusters
}
