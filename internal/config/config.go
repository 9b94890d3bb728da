package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	TrashDir   string `toml:"trash_dir"`
}

// Matching contains fuzzy grouping thresholds and corroboration tolerances.
type Matching struct {
	HighThreshold            float64 `toml:"high_threshold"`
	MediumThreshold          float64 `toml:"medium_threshold"`
	LowThreshold             float64 `toml:"low_threshold"`
	TempoToleranceBPM        float64 `toml:"tempo_tolerance_bpm"`
	TempoToleranceRatio      float64 `toml:"tempo_tolerance_ratio"`
	DurationToleranceSeconds float64 `toml:"duration_tolerance_seconds"`
	DurationToleranceRatio   float64 `toml:"duration_tolerance_ratio"`
}

// Scoring contains the weights used to rank versions of the same song.
type Scoring struct {
	VoteWeight         float64 `toml:"vote_weight"`
	DownloadDivisor    float64 `toml:"download_divisor"`
	RankedBonus        float64 `toml:"ranked_bonus"`
	CuratedBonus       float64 `toml:"curated_bonus"`
	VerifiedBonus      float64 `toml:"verified_bonus"`
	AutomapperPenalty  float64 `toml:"automapper_penalty"`
	DifficultyBonus    float64 `toml:"difficulty_bonus"`
	DifficultyBonusMin int     `toml:"difficulty_bonus_min"`
	SizeBase           int     `toml:"size_base"`
	SizePerDifficulty  int     `toml:"size_per_difficulty"`
}

// Library contains configuration for reading the map collection.
type Library struct {
	ScanWorkers       int    `toml:"scan_workers"`
	MetadataCachePath string `toml:"metadata_cache_path"`
	// StrictHashes rejects records whose identity hash is not a SHA-1 hex digest.
	StrictHashes bool `toml:"strict_hashes"`
}

// Prune contains configuration for removing redundant maps.
type Prune struct {
	// Mode is "trash" (move into paths.trash_dir) or "delete".
	Mode               string `toml:"mode"`
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
	// TrashRetentionDays is the default age for "mapcull trash clean"; 0 disables it.
	TrashRetentionDays int `toml:"trash_retention_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format             string            `toml:"format"`
	Level              string            `toml:"level"`
	RetentionDays      int               `toml:"retention_days"`
	ComponentOverrides map[string]string `toml:"component_overrides"`
}

// Config encapsulates all configuration values for mapcull.
//
// Configuration sections by subsystem:
//   - Paths: library, history database, logs, and trash directories
//   - Matching: fuzzy similarity tiers and tempo/duration tolerances
//   - Scoring: ranking weights and size estimate constants
//   - Library: scan concurrency, metadata cache, hash validation
//   - Prune: removal mode and library lock timeout
//   - Logging: log format, level, and per-component overrides
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Scoring  Scoring  `toml:"scoring"`
	Library  Library  `toml:"library"`
	Prune    Prune    `toml:"prune"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mapcull.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The library is
// never created: a missing library is reported by the scanner instead.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the analysis history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mapcull")
	}
	return "~/.local/share/mapcull"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
