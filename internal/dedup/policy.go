package dedup

import "math"

// Policy centralizes fuzzy-match thresholds, corroboration tolerances, and
// ranking weights.
type Policy struct {
	HighThreshold   float64
	MediumThreshold float64
	LowThreshold    float64

	TempoToleranceBPM        float64
	TempoToleranceRatio      float64
	DurationToleranceSeconds float64
	DurationToleranceRatio   float64

	VoteWeight         float64
	DownloadDivisor    float64
	RankedBonus        float64
	CuratedBonus       float64
	VerifiedBonus      float64
	AutomapperPenalty  float64
	DifficultyBonus    float64
	DifficultyBonusMin int

	SizeBase          int
	SizePerDifficulty int
}

// DefaultPolicy returns the reference thresholds and weights.
func DefaultPolicy() Policy {
	return Policy{
		HighThreshold:   0.9,
		MediumThreshold: 0.8,
		LowThreshold:    0.7,

		TempoToleranceBPM:        10,
		TempoToleranceRatio:      0.10,
		DurationToleranceSeconds: 15,
		DurationToleranceRatio:   0.15,

		VoteWeight:         2,
		DownloadDivisor:    20,
		RankedBonus:        500,
		CuratedBonus:       100,
		VerifiedBonus:      50,
		AutomapperPenalty:  300,
		DifficultyBonus:    100,
		DifficultyBonusMin: 5,

		SizeBase:          200,
		SizePerDifficulty: 50,
	}
}

// normalized replaces unset or out-of-range fields with their defaults. The
// three thresholds are reset together when they are not strictly ordered.
// Scoring weights and size constants keep zero; only negative or NaN values
// fall back.
func (p Policy) normalized() Policy {
	d := DefaultPolicy()

	if !inUnitInterval(p.HighThreshold) {
		p.HighThreshold = d.HighThreshold
	}
	if !inUnitInterval(p.MediumThreshold) {
		p.MediumThreshold = d.MediumThreshold
	}
	if !inUnitInterval(p.LowThreshold) {
		p.LowThreshold = d.LowThreshold
	}
	if p.HighThreshold <= p.MediumThreshold || p.MediumThreshold <= p.LowThreshold {
		p.HighThreshold = d.HighThreshold
		p.MediumThreshold = d.MediumThreshold
		p.LowThreshold = d.LowThreshold
	}
	if p.TempoToleranceBPM <= 0 {
		p.TempoToleranceBPM = d.TempoToleranceBPM
	}
	if p.TempoToleranceRatio <= 0 || p.TempoToleranceRatio >= 1 {
		p.TempoToleranceRatio = d.TempoToleranceRatio
	}
	if p.DurationToleranceSeconds <= 0 {
		p.DurationToleranceSeconds = d.DurationToleranceSeconds
	}
	if p.DurationToleranceRatio <= 0 || p.DurationToleranceRatio >= 1 {
		p.DurationToleranceRatio = d.DurationToleranceRatio
	}
	// Zero is a valid weight: it switches the signal off.
	for _, w := range []struct{ v, def *float64 }{
		{&p.VoteWeight, &d.VoteWeight},
		{&p.RankedBonus, &d.RankedBonus},
		{&p.CuratedBonus, &d.CuratedBonus},
		{&p.VerifiedBonus, &d.VerifiedBonus},
		{&p.AutomapperPenalty, &d.AutomapperPenalty},
		{&p.DifficultyBonus, &d.DifficultyBonus},
	} {
		if *w.v < 0 || math.IsNaN(*w.v) {
			*w.v = *w.def
		}
	}
	if !(p.DownloadDivisor > 0) {
		p.DownloadDivisor = d.DownloadDivisor
	}
	if p.DifficultyBonusMin <= 0 {
		p.DifficultyBonusMin = d.DifficultyBonusMin
	}
	if p.SizeBase < 0 {
		p.SizeBase = d.SizeBase
	}
	if p.SizePerDifficulty < 0 {
		p.SizePerDifficulty = d.SizePerDifficulty
	}

	return p
}

// Tier classifies a key similarity. Boundaries fall to the lower tier, so a
// similarity equal to HighThreshold is medium. ok is false when the
// similarity does not reach the low tier.
func (p Policy) Tier(similarity float64) (tier Similarity, ok bool) {
	switch {
	case similarity > p.HighThreshold:
		return SimilarityHigh, true
	case similarity > p.MediumThreshold:
		return SimilarityMedium, true
	case similarity > p.LowThreshold:
		return SimilarityLow, true
	default:
		return "", false
	}
}

func inUnitInterval(v float64) bool {
	return v > 0 && v < 1
}
