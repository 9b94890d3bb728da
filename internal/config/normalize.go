package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizePrune()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("MAPCULL_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir()
	}
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TrashDir) == "" {
		c.Paths.TrashDir = filepath.Join(c.Paths.DataDir, "trash")
	}
	if c.Paths.TrashDir, err = expandPath(c.Paths.TrashDir); err != nil {
		return fmt.Errorf("paths.trash_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	if c.Library.ScanWorkers <= 0 {
		c.Library.ScanWorkers = defaultScanWorkers
	}
	c.Library.MetadataCachePath = strings.TrimSpace(c.Library.MetadataCachePath)
	if c.Library.MetadataCachePath == "" {
		c.Library.MetadataCachePath = filepath.Join(c.Paths.DataDir, "metadata.json")
	}
	var err error
	if c.Library.MetadataCachePath, err = expandPath(c.Library.MetadataCachePath); err != nil {
		return fmt.Errorf("library.metadata_cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePrune() {
	c.Prune.Mode = strings.ToLower(strings.TrimSpace(c.Prune.Mode))
	if c.Prune.Mode == "" {
		c.Prune.Mode = defaultPruneMode
	}
	if c.Prune.LockTimeoutSeconds <= 0 {
		c.Prune.LockTimeoutSeconds = defaultLockTimeout
	}
	if c.Prune.TrashRetentionDays < 0 {
		c.Prune.TrashRetentionDays = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if len(c.Logging.ComponentOverrides) > 0 {
		overrides := make(map[string]string, len(c.Logging.ComponentOverrides))
		for component, level := range c.Logging.ComponentOverrides {
			key := strings.ToLower(strings.TrimSpace(component))
			value := strings.ToLower(strings.TrimSpace(level))
			if key == "" || value == "" {
				continue
			}
			overrides[key] = value
		}
		c.Logging.ComponentOverrides = overrides
	}
}
