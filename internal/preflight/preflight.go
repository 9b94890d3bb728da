package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"mapcull/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check applicable to cfg. The trash checks
// only run in trash prune mode.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if cfg.Prune.Mode == config.PruneModeTrash {
		results = append(results, CheckTrashPlacement(cfg.Paths.LibraryDir, cfg.Paths.TrashDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTrashPlacement verifies that the trash directory lies outside the
// library and reports whether moves into it will be renames or copies. The
// trash directory itself need not exist yet.
func CheckTrashPlacement(libraryDir, trashDir string) Result {
	const name = "Trash directory"

	if strings.TrimSpace(trashDir) == "" {
		return Result{Name: name, Detail: "paths.trash_dir is not set"}
	}
	if rel, err := filepath.Rel(libraryDir, trashDir); err == nil && (rel == "." || filepath.IsLocal(rel)) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: inside the library directory)", trashDir)}
	}

	anchor, err := nearestExisting(trashDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", trashDir, err)}
	}
	if err := unix.Access(anchor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", trashDir, anchor, err)}
	}

	var libStat, trashStat unix.Stat_t
	if err := unix.Stat(libraryDir, &libStat); err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable; library not inspected)", trashDir)}
	}
	if err := unix.Stat(anchor, &trashStat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat %s: %v)", trashDir, anchor, err)}
	}
	if libStat.Dev != trashStat.Dev {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (different filesystem; maps will be copied)", trashDir)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (same filesystem as library)", trashDir)}
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", current)
			}
			return current, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New("no existing parent directory")
		}
		current = parent
	}
}
