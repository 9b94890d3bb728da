package prune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"mapcull/internal/dedup"
	"mapcull/internal/fileutil"
	"mapcull/internal/history"
	"mapcull/internal/logging"
)

const (
	ModeTrash  = "trash"
	ModeDelete = "delete"

	// LockFileName is created in the library root while a prune runs.
	LockFileName = ".mapcull.lock"

	lockRetryDelay = 100 * time.Millisecond
)

// ErrLocked is returned when another process holds the library lock.
var ErrLocked = errors.New("library is locked by another mapcull process")

// Options controls one prune.
type Options struct {
	RunID       string
	LibraryRoot string
	Mode        string
	TrashDir    string
	// DryRun measures candidates without touching them.
	DryRun      bool
	LockTimeout time.Duration
}

// Report summarizes a prune.
type Report struct {
	RunID          string               `json:"run_id"`
	Mode           string               `json:"mode"`
	DryRun         bool                 `json:"dry_run"`
	Entries        []history.PruneEntry `json:"entries"`
	Removed        int                  `json:"removed"`
	Skipped        int                  `json:"skipped"`
	Failed         int                  `json:"failed"`
	ReclaimedBytes int64                `json:"reclaimed_bytes"`
	FreeBefore     uint64               `json:"free_before"`
	FreeAfter      uint64               `json:"free_after"`
}

// Executor applies prune plans to the filesystem.
type Executor struct {
	logger *slog.Logger
	statfs func(path string) (total, free uint64, err error)
	now    func() time.Time
}

// NewExecutor constructs an executor.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		logger: logging.NewComponentLogger(logger, "prune"),
		statfs: realStatfs,
		now:    time.Now,
	}
}

type candidate struct {
	member dedup.ScoredRecord
	path   string
	rel    string
}

// Execute removes (or, in dry-run mode, measures) every redundant member of
// result. Per-folder failures are recorded in the report rather than
// aborting; the returned error is reserved for invalid options, lock
// contention, and cancellation.
func (e *Executor) Execute(ctx context.Context, result dedup.Result, opts Options) (Report, error) {
	report := Report{RunID: opts.RunID, Mode: opts.Mode, DryRun: opts.DryRun}

	root, err := e.validate(&opts)
	if err != nil {
		return report, err
	}
	report.Mode = opts.Mode

	candidates, skipped := plan(result, root, opts.TrashDir)
	stamp := e.now().UTC()
	for _, entry := range skipped {
		entry.CreatedAt = stamp
		report.Entries = append(report.Entries, entry)
		report.Skipped++
	}

	if !opts.DryRun {
		unlock, err := e.lock(ctx, root, opts.LockTimeout)
		if err != nil {
			return report, err
		}
		defer unlock()
	}

	if _, free, err := e.statfs(root); err == nil {
		report.FreeBefore = free
	}

	logger := logging.WithContext(logging.WithRunID(ctx, opts.RunID), e.logger)
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		entry := e.apply(logger, c, opts)
		switch entry.Action {
		case history.ActionSkipped:
			report.Skipped++
		case history.ActionFailed:
			report.Failed++
		default:
			report.Removed++
			report.ReclaimedBytes += entry.Bytes
		}
		report.Entries = append(report.Entries, entry)
	}

	if _, free, err := e.statfs(root); err == nil {
		report.FreeAfter = free
	}

	logger.Info("prune finished",
		logging.String("mode", opts.Mode),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("removed", report.Removed),
		logging.Int("skipped", report.Skipped),
		logging.Int("failed", report.Failed),
		logging.Int64("reclaimed_bytes", report.ReclaimedBytes),
	)
	return report, nil
}

func (e *Executor) validate(opts *Options) (string, error) {
	if strings.TrimSpace(opts.LibraryRoot) == "" {
		return "", errors.New("library root is required")
	}
	root, err := filepath.Abs(opts.LibraryRoot)
	if err != nil {
		return "", fmt.Errorf("resolve library root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("library root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("library root %s is not a directory", root)
	}

	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeTrash
	}
	switch opts.Mode {
	case ModeTrash:
		if strings.TrimSpace(opts.TrashDir) == "" {
			return "", errors.New("trash mode requires a trash directory")
		}
		if opts.TrashDir, err = filepath.Abs(opts.TrashDir); err != nil {
			return "", fmt.Errorf("resolve trash directory: %w", err)
		}
	case ModeDelete:
	default:
		return "", fmt.Errorf("unknown prune mode %q", opts.Mode)
	}
	if strings.TrimSpace(opts.RunID) == "" {
		opts.RunID = "unsaved-" + e.now().UTC().Format("20060102T150405")
	}
	return root, nil
}

// plan selects the folders to remove. A path that any cluster recommends is
// never removed, even when another cluster lists it as redundant.
func plan(result dedup.Result, root, trashDir string) ([]candidate, []history.PruneEntry) {
	keep := make(map[string]struct{})
	for _, cluster := range result.Clusters {
		if rec, ok := cluster.Recommended(); ok && rec.Record.Path != "" {
			keep[filepath.Clean(rec.Record.Path)] = struct{}{}
		}
	}

	var (
		candidates []candidate
		skipped    []history.PruneEntry
	)
	seen := make(map[string]struct{})
	skip := func(m dedup.ScoredRecord, path, reason string) {
		skipped = append(skipped, history.PruneEntry{
			Path:   path,
			Hash:   m.Record.Hash,
			Title:  m.Record.Title,
			Action: history.ActionSkipped,
			Error:  reason,
		})
	}

	for _, cluster := range result.Clusters {
		for _, member := range cluster.Redundant() {
			if strings.TrimSpace(member.Record.Path) == "" {
				skip(member, "", "record has no path")
				continue
			}
			path := filepath.Clean(member.Record.Path)
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}

			if _, kept := keep[path]; kept {
				skip(member, path, "recommended in another cluster")
				continue
			}
			rel, ok := within(root, path)
			if !ok {
				skip(member, path, "outside the library root")
				continue
			}
			if trashDir != "" {
				if _, inTrash := within(trashDir, path); inTrash || path == trashDir {
					skip(member, path, "inside the trash directory")
					continue
				}
			}
			candidates = append(candidates, candidate{member: member, path: path, rel: rel})
		}
	}
	return candidates, skipped
}

// within reports whether path lies strictly below root, returning the
// relative path.
func within(root, path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}

func (e *Executor) apply(logger *slog.Logger, c candidate, opts Options) history.PruneEntry {
	entry := history.PruneEntry{
		Path:      c.path,
		Hash:      c.member.Record.Hash,
		Title:     c.member.Record.Title,
		CreatedAt: e.now().UTC(),
	}

	info, err := os.Lstat(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		entry.Action = history.ActionSkipped
		entry.Error = "folder no longer exists"
		return entry
	case err != nil:
		return e.fail(logger, entry, err)
	case !info.IsDir():
		entry.Action = history.ActionSkipped
		entry.Error = "not a directory"
		return entry
	}

	size, err := fileutil.DirSize(c.path)
	if err != nil {
		return e.fail(logger, entry, fmt.Errorf("measure folder: %w", err))
	}
	entry.Bytes = size

	if opts.DryRun {
		entry.Action = history.ActionPlanned
		return entry
	}

	switch opts.Mode {
	case ModeTrash:
		dest := filepath.Join(opts.TrashDir, opts.RunID, c.rel)
		if err := fileutil.MoveDir(c.path, dest); err != nil {
			return e.fail(logger, entry, err)
		}
		entry.Action = history.ActionTrash
		entry.Destination = dest
	case ModeDelete:
		if err := os.RemoveAll(c.path); err != nil {
			return e.fail(logger, entry, err)
		}
		entry.Action = history.ActionDelete
	}

	logger.Debug("map folder pruned",
		logging.String(logging.FieldPath, c.path),
		logging.String(logging.FieldHash, entry.Hash),
		logging.String("action", string(entry.Action)),
		logging.Int64("bytes", size),
	)
	return entry
}

func (e *Executor) fail(logger *slog.Logger, entry history.PruneEntry, err error) history.PruneEntry {
	entry.Action = history.ActionFailed
	entry.Error = err.Error()
	logging.WarnWithContext(logger, "map folder not pruned", "prune_failed",
		logging.Alert("prune_failed"),
		logging.String(logging.FieldPath, entry.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check folder permissions and retry the prune"),
		logging.String(logging.FieldImpact, "duplicate remains in the library"),
	)
	return entry
}

func (e *Executor) lock(ctx context.Context, root string, timeout time.Duration) (func(), error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	lock := flock.New(filepath.Join(root, LockFileName))
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire library lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logging.WarnWithContext(e.logger, "failed to release library lock", "prune_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldPath, lock.Path()),
				logging.String(logging.FieldImpact, "lock is released when the process exits"),
			)
		}
	}, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
