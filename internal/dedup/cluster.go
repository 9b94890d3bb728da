package dedup

// Similarity classifies how a cluster was formed.
type Similarity string

const (
	// SimilarityExact marks clusters of byte-identical records (same hash).
	SimilarityExact  Similarity = "exact"
	SimilarityHigh   Similarity = "high"
	SimilarityMedium Similarity = "medium"
	SimilarityLow    Similarity = "low"
)

// ScoredRecord is a cluster member with its ranking outcome.
type ScoredRecord struct {
	Record        Record  `json:"record"`
	Score         float64 `json:"score"`
	Recommended   bool    `json:"recommended"`
	EstimatedSize int     `json:"estimated_size"`
}

// Cluster groups two or more records judged to be the same song. Title and
// Author come from the first member as it appeared in the input.
type Cluster struct {
	Title      string         `json:"title"`
	Author     string         `json:"author"`
	Similarity Similarity     `json:"similarity"`
	Members    []ScoredRecord `json:"members"`
	TotalSize  int            `json:"total_size"`
}

// Recommended returns the member marked for retention.
func (c Cluster) Recommended() (ScoredRecord, bool) {
	for _, m := range c.Members {
		if m.Recommended {
			return m, true
		}
	}
	return ScoredRecord{}, false
}

// Redundant returns every member not marked for retention.
func (c Cluster) Redundant() []ScoredRecord {
	out := make([]ScoredRecord, 0, len(c.Members))
	for _, m := range c.Members {
		if !m.Recommended {
			out = append(out, m)
		}
	}
	return out
}

// Result is the outcome of one analysis.
type Result struct {
	Clusters             []Cluster `json:"clusters"`
	TotalDuplicates      int       `json:"total_duplicates"`
	PotentialSpaceSaving int       `json:"potential_space_saving"`
}

func newCluster(first Record, similarity Similarity) Cluster {
	return Cluster{
		Title:      first.Title,
		Author:     first.Author,
		Similarity: similarity,
		Members:    []ScoredRecord{{Record: first}},
	}
}
