package metacache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mapcull/internal/dedup"
	"mapcull/internal/logging"
)

// ErrEmptyHash is returned when an entry has no identity hash.
var ErrEmptyHash = errors.New("hash cannot be empty")

// Entry is the cached metadata for one map.
type Entry struct {
	Hash     string         `json:"hash"`
	Metadata dedup.Metadata `json:"metadata"`
	CachedAt time.Time      `json:"cached_at"`
}

// Cache provides thread-safe access to the metadata cache.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]Entry // keyed by normalized hash
	now     func() time.Time
}

// NewCache creates a new cache instance. If path is empty, the cache will be
// non-functional (all operations become no-ops). The cache file is created
// lazily on first write.
func NewCache(path string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "metacache")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load metadata cache", "metacache_load_failed",
			logging.Error(err),
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldErrorHint, "cache will start empty; re-import metadata"),
			logging.String(logging.FieldImpact, "ranking falls back to map-local signals"))
	}

	return c
}

func normalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// Lookup returns cached metadata for hash.
func (c *Cache) Lookup(hash string) (dedup.Metadata, bool) {
	hash = normalizeHash(hash)
	if hash == "" || c.path == "" {
		return dedup.Metadata{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[hash]
	return entry.Metadata, found
}

// Store adds or updates an entry in the cache and persists to disk.
func (c *Cache) Store(entry Entry) error {
	entry.Hash = normalizeHash(entry.Hash)
	if entry.Hash == "" {
		return ErrEmptyHash
	}
	if c.path == "" {
		return nil
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = c.now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.Hash] = entry

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached map metadata", logging.String(logging.FieldHash, entry.Hash))
	return nil
}

// Import merges a JSON array of entries read from r and persists once. Entries
// without a hash are skipped. It returns the number of entries stored.
func (c *Cache) Import(r io.Reader) (int, error) {
	var incoming []Entry
	if err := json.NewDecoder(r).Decode(&incoming); err != nil {
		return 0, fmt.Errorf("decode metadata export: %w", err)
	}
	if c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().UTC()
	stored, skipped := 0, 0
	for _, entry := range incoming {
		entry.Hash = normalizeHash(entry.Hash)
		if entry.Hash == "" {
			skipped++
			continue
		}
		if entry.CachedAt.IsZero() {
			entry.CachedAt = stamp
		}
		c.entries[entry.Hash] = entry
		stored++
	}

	if stored > 0 {
		if err := c.save(); err != nil {
			return 0, fmt.Errorf("persist cache: %w", err)
		}
	}

	c.logger.Info("metadata imported",
		logging.Int("stored", stored),
		logging.Int("skipped", skipped),
		logging.Int("entry_count", len(c.entries)))
	return stored, nil
}

// Remove deletes an entry by hash and persists the change.
func (c *Cache) Remove(hash string) error {
	hash = normalizeHash(hash)
	if hash == "" {
		return ErrEmptyHash
	}
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hash]; !exists {
		return fmt.Errorf("hash %q not found in cache", hash)
	}

	delete(c.entries, hash)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("removed map metadata from cache", logging.String(logging.FieldHash, hash))
	return nil
}

// List returns all cache entries sorted by CachedAt descending (newest first).
func (c *Cache) List() []Entry {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedLocked()
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cleared metadata cache")
	return nil
}

// Count returns the number of entries in the cache.
func (c *Cache) Count() int {
	if c.path == "" {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Path returns the backing file location, empty when the cache is disabled.
func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) sortedLocked() []Entry {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].CachedAt.After(entries[j].CachedAt)
		}
		return entries[i].Hash < entries[j].Hash
	})
	return entries
}

// load reads the cache from disk into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		entry.Hash = normalizeHash(entry.Hash)
		if entry.Hash != "" {
			c.entries[entry.Hash] = entry
		}
	}

	c.logger.Debug("loaded metadata cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String(logging.FieldPath, c.path))

	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.sortedLocked(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
