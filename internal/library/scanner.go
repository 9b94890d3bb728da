package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"mapcull/internal/dedup"
	"mapcull/internal/fileutil"
	"mapcull/internal/logging"
)

// MetadataSource supplies cached community metadata by identity hash.
type MetadataSource interface {
	Lookup(hash string) (dedup.Metadata, bool)
}

// Scanner reads map folders into records.
type Scanner struct {
	workers  int
	metadata MetadataSource
	logger   *slog.Logger
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers bounds how many map folders are hashed concurrently.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithMetadata overlays cached metadata onto scanned records.
func WithMetadata(source MetadataSource) ScannerOption {
	return func(s *Scanner) { s.metadata = source }
}

// WithLogger sets the scanner logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = logging.NewComponentLogger(logger, "scanner") }
}

// NewScanner constructs a scanner with the supplied options.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{workers: 4, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads every map folder directly below root. Folders without an
// Info.dat are ignored; folders that cannot be read or parsed are logged and
// skipped. Records are returned sorted by folder name.
func (s *Scanner) Scan(ctx context.Context, root string) ([]dedup.Record, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read library %s: %w", root, err)
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			dirs = append(dirs, entry.Name())
		}
	}
	slices.Sort(dirs)

	results := make([]*dedup.Record, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			dir := filepath.Join(root, name)
			rec, err := ReadMap(dir)
			switch {
			case err == nil:
				results[i] = &rec
			case errors.Is(err, ErrNotAMap):
				s.logger.Debug("folder skipped; no info.dat", logging.String(logging.FieldPath, dir))
			default:
				logging.WarnWithContext(s.logger, "map skipped; folder unreadable", "map_unreadable",
					logging.String(logging.FieldPath, dir),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the folder's Info.dat and difficulty files"),
					logging.String(logging.FieldImpact, "map excluded from duplicate analysis"),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]dedup.Record, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	overlaid := 0
	if s.metadata != nil {
		overlaid = ApplyMetadata(records, s.metadata)
	}
	s.logger.Info("library scanned",
		logging.String(logging.FieldPath, root),
		logging.Int("folders", len(dirs)),
		logging.Int("maps", len(records)),
		logging.Int("metadata_overlaid", overlaid),
	)
	return records, nil
}

// ErrNotAMap reports a folder without an Info.dat.
var ErrNotAMap = errors.New("folder has no info.dat")

// ReadMap parses the map folder at dir into a record.
func ReadMap(dir string) (dedup.Record, error) {
	infoPath, err := findInfo(dir)
	if err != nil {
		return dedup.Record{}, err
	}
	data, err := os.ReadFile(infoPath)
	if err != nil {
		return dedup.Record{}, fmt.Errorf("read info.dat: %w", err)
	}
	info, err := parseInfo(data)
	if err != nil {
		return dedup.Record{}, err
	}

	paths := make([]string, 0, len(info.Files)+1)
	paths = append(paths, infoPath)
	for _, name := range info.Files {
		if !filepath.IsLocal(name) {
			return dedup.Record{}, fmt.Errorf("difficulty file %q escapes map folder", name)
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	hash, err := fileutil.HashFiles(paths...)
	if err != nil {
		return dedup.Record{}, fmt.Errorf("hash map: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	rec := dedup.Record{
		Hash:         hash,
		Path:         abs,
		Title:        strings.TrimSpace(info.Title),
		Author:       strings.TrimSpace(info.Author),
		Mapper:       strings.TrimSpace(info.Mapper),
		Difficulties: info.Difficulties,
	}
	if info.BPM > 0 {
		bpm := info.BPM
		rec.BPM = &bpm
	}
	if info.Duration > 0 {
		duration := info.Duration
		rec.Metadata = &dedup.Metadata{Duration: &duration}
	}
	return rec, nil
}

func findInfo(dir string) (string, error) {
	for _, name := range infoFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", ErrNotAMap
}

// ApplyMetadata fills in metadata for records that have none, or only a
// duration read from the map itself. It returns how many records changed.
func ApplyMetadata(records []dedup.Record, source MetadataSource) int {
	if source == nil {
		return 0
	}
	changed := 0
	for i := range records {
		rec := &records[i]
		if rec.Metadata != nil && !durationOnly(rec.Metadata) {
			continue
		}
		meta, ok := source.Lookup(rec.Hash)
		if !ok {
			continue
		}
		if meta.Duration == nil && rec.Metadata != nil {
			meta.Duration = rec.Metadata.Duration
		}
		rec.Metadata = &meta
		changed++
	}
	return changed
}

func durationOnly(m *dedup.Metadata) bool {
	stripped := *m
	stripped.Duration = nil
	return stripped == (dedup.Metadata{})
}
