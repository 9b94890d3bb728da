package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validatePrune(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mapcull/config.toml"
		}
		return fmt.Errorf("paths.library_dir must be set. Set MAPCULL_LIBRARY_DIR or edit %s (create with 'mapcull config init')", defaultPath)
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"matching.high_threshold", m.HighThreshold},
		{"matching.medium_threshold", m.MediumThreshold},
		{"matching.low_threshold", m.LowThreshold},
	} {
		if !(check.value > 0 && check.value < 1) {
			return fmt.Errorf("%s must be between 0 and 1 (exclusive)", check.name)
		}
	}
	if !(m.HighThreshold > m.MediumThreshold && m.MediumThreshold > m.LowThreshold) {
		return errors.New("matching thresholds must satisfy high > medium > low")
	}
	if !positiveFinite(m.TempoToleranceBPM) || !positiveFinite(m.TempoToleranceRatio) {
		return errors.New("matching.tempo_tolerance_bpm and matching.tempo_tolerance_ratio must be positive")
	}
	if !positiveFinite(m.DurationToleranceSeconds) || !positiveFinite(m.DurationToleranceRatio) {
		return errors.New("matching.duration_tolerance_seconds and matching.duration_tolerance_ratio must be positive")
	}
	return nil
}

func (c *Config) validateScoring() error {
	s := c.Scoring
	if !positiveFinite(s.DownloadDivisor) {
		return errors.New("scoring.download_divisor must be positive")
	}
	weights := map[string]float64{
		"vote_weight":        s.VoteWeight,
		"ranked_bonus":       s.RankedBonus,
		"curated_bonus":      s.CuratedBonus,
		"verified_bonus":     s.VerifiedBonus,
		"automapper_penalty": s.AutomapperPenalty,
		"difficulty_bonus":   s.DifficultyBonus,
	}
	for _, name := range slices.Sorted(maps.Keys(weights)) {
		if v := weights[name]; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scoring.%s must be zero or positive (0 disables it)", name)
		}
	}
	if s.DifficultyBonusMin < 1 {
		return errors.New("scoring.difficulty_bonus_min must be at least 1")
	}
	if s.SizeBase < 0 || s.SizePerDifficulty < 0 {
		return errors.New("scoring size constants must not be negative")
	}
	return nil
}

func (c *Config) validatePrune() error {
	switch c.Prune.Mode {
	case PruneModeTrash:
		if c.Paths.TrashDir == "" {
			return errors.New("paths.trash_dir must be set when prune.mode is trash")
		}
	case PruneModeDelete:
	default:
		return fmt.Errorf("prune.mode must be %q or %q, got %q", PruneModeTrash, PruneModeDelete, c.Prune.Mode)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	for component, level := range c.Logging.ComponentOverrides {
		if !validLevel(level) {
			return fmt.Errorf("logging.component_overrides.%s: unknown level %q", component, level)
		}
	}
	return nil
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
