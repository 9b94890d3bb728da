package prune

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mapcull/internal/fileutil"
	"mapcull/internal/logging"
)

// TrashRun is one run folder inside the trash directory.
type TrashRun struct {
	RunID   string    `json:"run_id"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Maps    int       `json:"maps"`
	Bytes   int64     `json:"bytes"`
}

// CleanResult contains the outcome of a trash cleanup.
type CleanResult struct {
	Removed []TrashRun
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// ListTrash returns the run folders in trashDir, oldest first. A missing
// trash directory is empty.
func ListTrash(trashDir string) ([]TrashRun, error) {
	trashDir = strings.TrimSpace(trashDir)
	if trashDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trashDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []TrashRun
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(trashDir, entry.Name())
		run := TrashRun{RunID: entry.Name(), Path: dirPath, ModTime: info.ModTime()}
		if maps, err := os.ReadDir(dirPath); err == nil {
			run.Maps = len(maps)
		}
		run.Bytes, _ = fileutil.DirSize(dirPath)
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b TrashRun) int {
		if c := a.ModTime.Compare(b.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.RunID, b.RunID)
	})
	return runs, nil
}

// CleanTrash permanently removes trashed runs last modified before
// now-maxAge. A non-positive maxAge removes every run.
func CleanTrash(ctx context.Context, trashDir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	logger = logging.NewComponentLogger(logger, "trash")
	result := CleanResult{}

	runs, err := ListTrash(trashDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: trashDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, run := range runs {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, CleanupError{Path: run.Path, Error: ctx.Err()})
			return result
		}
		if maxAge > 0 && !run.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(run.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: run.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove trashed run", "trash_cleanup_failed",
				logging.String(logging.FieldPath, run.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check trash_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, run)
		logger.Info("removed trashed run",
			logging.String(logging.FieldRunID, run.RunID),
			logging.String(logging.FieldPath, run.Path),
			logging.Duration("age", time.Since(run.ModTime)),
			logging.String(logging.FieldEventType, "trash_cleanup"),
		)
	}
	return result
}
