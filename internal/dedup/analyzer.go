package dedup

import (
	"log/slog"

	"mapcull/internal/logging"
)

// Analyzer runs the full duplicate analysis. It holds no mutable state and
// may be shared between goroutines.
type Analyzer struct {
	grouper *SongGrouper
	ranker  Ranker
	logger  *slog.Logger
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithMatcher replaces the key similarity used by fuzzy grouping.
func WithMatcher(m Matcher) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.grouper.matcher = m
		}
	}
}

// WithLogger attaches a logger for per-analysis summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logging.NewComponentLogger(logger, "analyzer")
	}
}

// NewAnalyzer builds an analyzer for policy.
func NewAnalyzer(policy Policy, opts ...Option) *Analyzer {
	a := &Analyzer{
		grouper: NewSongGrouper(policy, nil),
		ranker:  NewRanker(policy),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze clusters records by hash and by song, ranks every cluster, and
// totals the members that are not recommended. Hash clusters come first.
// The same record may appear in both an exact and a fuzzy cluster.
func (a *Analyzer) Analyze(records []Record) Result {
	exact := GroupByHash(records)
	fuzzy := a.grouper.Group(records)

	clusters := make([]Cluster, 0, len(exact)+len(fuzzy))
	clusters = append(clusters, exact...)
	clusters = append(clusters, fuzzy...)
	clusters = a.ranker.Rank(clusters)

	result := Result{Clusters: clusters}
	for _, cluster := range clusters {
		for _, member := range cluster.Members {
			if member.Recommended {
				continue
			}
			result.TotalDuplicates++
			result.PotentialSpaceSaving += member.EstimatedSize
		}
	}

	a.logger.Debug("duplicate analysis complete",
		logging.Int("records", len(records)),
		logging.Int("exact_clusters", len(exact)),
		logging.Int("fuzzy_clusters", len(fuzzy)),
		logging.Int("total_duplicates", result.TotalDuplicates),
		logging.Int("potential_space_saving", result.PotentialSpaceSaving),
	)
	return result
}
