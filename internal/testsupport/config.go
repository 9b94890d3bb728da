package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mapcull/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The library directory is created so scanners can read it immediately.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TrashDir = filepath.Join(base, "trash")
	cfgVal.Library.MetadataCachePath = filepath.Join(base, "data", "metadata.json")
	cfgVal.Prune.LockTimeoutSeconds = 1

	if err := os.MkdirAll(cfgVal.Paths.LibraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPruneMode sets prune.mode on the test config.
func WithPruneMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Prune.Mode = mode
	}
}

// WithStrictHashes enables library.strict_hashes.
func WithStrictHashes() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.StrictHashes = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
