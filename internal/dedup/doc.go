// Package dedup finds duplicate and near-duplicate map records in a batch and
// ranks the versions of each song so exactly one can be kept.
//
// Analysis runs in three stages over the same, unmodified batch:
//
//   - GroupByHash clusters records sharing an identity hash ("exact").
//   - SongGrouper clusters records whose normalized title/author keys are
//     close by edit distance, corroborated by tempo and duration.
//   - Ranker scores every member from community metadata, sorts each cluster,
//     marks the best member recommended, and estimates reclaimable size.
//
// Analyzer composes the stages and totals the redundant members. Everything
// here is pure computation over in-memory values: loading records, fetching
// metadata, and deleting files belong to the library, metacache, and prune
// packages.
//
// Fuzzy grouping is a single greedy pass in input order. It is not
// transitive: if A matches B and B matches C, C only joins when it also
// matches the seed A. A record consumed by an earlier seed is never a seed
// itself. Fuzzy clusters are always labelled SimilarityHigh regardless of the
// tiers observed between individual pairs.
package dedup
