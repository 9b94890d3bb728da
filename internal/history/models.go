package history

import (
	"errors"
	"time"

	"mapcull/internal/dedup"
)

var (
	// ErrNotFound is returned when no run matches the requested identifier.
	ErrNotFound = errors.New("run not found")
	// ErrAmbiguous is returned when an identifier prefix matches several runs.
	ErrAmbiguous = errors.New("run identifier is ambiguous")
)

// Source describes where the analysed records came from.
type Source string

const (
	SourceLibrary  Source = "library"
	SourceManifest Source = "manifest"
)

// Run is one persisted duplicate analysis.
type Run struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Source      Source       `json:"source"`
	LibraryDir  string       `json:"library_dir,omitempty"`
	RecordCount int          `json:"record_count"`
	Result      dedup.Result `json:"result"`
}

// ClusterCount returns the number of duplicate clusters in the run.
func (r Run) ClusterCount() int {
	return len(r.Result.Clusters)
}

// Action is what happened to one map folder during a prune.
type Action string

const (
	ActionTrash   Action = "trash"
	ActionDelete  Action = "delete"
	ActionPlanned Action = "planned"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// PruneEntry records the outcome for one map folder.
type PruneEntry struct {
	Path        string    `json:"path"`
	Hash        string    `json:"hash,omitempty"`
	Title       string    `json:"title,omitempty"`
	Action      Action    `json:"action"`
	Destination string    `json:"destination,omitempty"`
	Bytes       int64     `json:"bytes"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunSummary is the list view of a run.
type RunSummary struct {
	ID                   string    `json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	Source               Source    `json:"source"`
	LibraryDir           string    `json:"library_dir,omitempty"`
	RecordCount          int       `json:"record_count"`
	ClusterCount         int       `json:"cluster_count"`
	TotalDuplicates      int       `json:"total_duplicates"`
	PotentialSpaceSaving int       `json:"potential_space_saving"`
	PruneCount           int       `json:"prune_count"`
}
