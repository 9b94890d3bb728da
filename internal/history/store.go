package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mapcull/internal/config"
)

const (
	// minPrefixLen is the shortest identifier prefix GetRun will resolve.
	minPrefixLen = 4
	// timeLayout is fixed width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages analysis history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the history database in the configured data
// directory and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the history database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SaveRun persists run, assigning an identifier and creation time when absent.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	if run.Source == "" {
		run.Source = SourceLibrary
	}

	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, created_at, source, library_dir, record_count, cluster_count,
            total_duplicates, potential_space_saving, result_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		string(run.Source),
		nullableString(run.LibraryDir),
		run.RecordCount,
		run.ClusterCount(),
		run.Result.TotalDuplicates,
		run.Result.PotentialSpaceSaving,
		string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, created_at, source, library_dir, record_count, result_json`

// GetRun fetches a run by its full identifier or a unique prefix of at least
// four characters.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if len(id) < minPrefixLen {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("query run prefix: %w", err)
	}
	var matches []string
	for rows.Next() {
		var match string
		if err := rows.Scan(&match); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		matches = append(matches, match)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run ids: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return s.GetRun(ctx, matches[0])
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns run summaries newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT r.id, r.created_at, r.source, r.library_dir, r.record_count, r.cluster_count,
            r.total_duplicates, r.potential_space_saving,
            (SELECT COUNT(1) FROM prune_entries p WHERE p.run_id = r.id)
        FROM runs r ORDER BY r.created_at DESC, r.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			summary    RunSummary
			createdAt  string
			source     string
			libraryDir sql.NullString
		)
		if err := rows.Scan(
			&summary.ID, &createdAt, &source, &libraryDir, &summary.RecordCount, &summary.ClusterCount,
			&summary.TotalDuplicates, &summary.PotentialSpaceSaving, &summary.PruneCount,
		); err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		summary.CreatedAt = parseTime(createdAt)
		summary.Source = Source(source)
		summary.LibraryDir = libraryDir.String
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

// RecordPrune appends prune outcomes for runID in one transaction.
func (s *Store) RecordPrune(ctx context.Context, runID string, entries []PruneEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("check run: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prune_entries (
            run_id, path, hash, title, action, destination, bytes, error_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare prune insert: %w", err)
	}
	defer stmt.Close()

	stamp := s.now().UTC()
	for _, entry := range entries {
		created := entry.CreatedAt
		if created.IsZero() {
			created = stamp
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			entry.Path,
			nullableString(entry.Hash),
			nullableString(entry.Title),
			string(entry.Action),
			nullableString(entry.Destination),
			entry.Bytes,
			nullableString(entry.Error),
			created.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("insert prune entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prune entries: %w", err)
	}
	return nil
}

// PruneEntries returns the recorded prune outcomes for runID in insertion order.
func (s *Store) PruneEntries(ctx context.Context, runID string) ([]PruneEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, hash, title, action, destination, bytes, error_message, created_at
        FROM prune_entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query prune entries: %w", err)
	}
	defer rows.Close()

	var entries []PruneEntry
	for rows.Next() {
		var (
			entry                            PruneEntry
			hash, title, destination, errMsg sql.NullString
			action, createdAt                string
		)
		if err := rows.Scan(&entry.Path, &hash, &title, &action, &destination, &entry.Bytes, &errMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prune entry: %w", err)
		}
		entry.Hash = hash.String
		entry.Title = title.String
		entry.Action = Action(action)
		entry.Destination = destination.String
		entry.Error = errMsg.String
		entry.CreatedAt = parseTime(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prune entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		createdAt  string
		source     string
		libraryDir sql.NullString
		resultJSON string
	)
	if err := row.Scan(&run.ID, &createdAt, &source, &libraryDir, &run.RecordCount, &resultJSON); err != nil {
		return nil, err
	}
	run.CreatedAt = parseTime(createdAt)
	run.Source = Source(source)
	run.LibraryDir = libraryDir.String
	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return nil, fmt.Errorf("decode result for run %s: %w", run.ID, err)
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
