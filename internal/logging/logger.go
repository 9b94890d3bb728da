package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mapcull/internal/config"
)

// LogFileName is the JSON log written inside the configured log directory.
const LogFileName = "mapcull.log"

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	Development bool
	// ComponentLevels maps component names to their own minimum level.
	ComponentLevels map[string]string
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	handler, err := newHandler(opts, nil)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func newHandler(opts Options, extra slog.Handler) (slog.Handler, error) {
	level := parseLevel(opts.Level)
	overrides := parseOverrides(opts.ComponentLevels)

	// The inner handlers must let through the most verbose level any component asks for.
	floor := level
	for _, lvl := range overrides {
		floor = min(floor, lvl)
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(floor)

	outputWriter, err := openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
	if err != nil {
		return nil, err
	}

	addSource := opts.Development || level <= slog.LevelDebug

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "console"
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler, err = newJSONHandler(outputWriter, levelVar, addSource)
		if err != nil {
			return nil, err
		}
	case "console":
		handler = newPrettyHandler(outputWriter, levelVar, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	handler = newFanoutHandler(handler, extra)
	return newComponentLevelHandler(handler, level, overrides), nil
}

// NewFromConfig creates a logger using application config defaults. Console
// (or JSON, per logging.format) output goes to stderr; when a log directory is
// configured every record is also appended as JSON to LogFileName.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console"})
	}

	var fileHandler slog.Handler
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		writer, err := openWriters([]string{filepath.Join(dir, LogFileName)})
		if err != nil {
			return nil, err
		}
		levelVar := new(slog.LevelVar)
		levelVar.Set(slog.LevelDebug)
		fileHandler, err = newJSONHandler(writer, levelVar, false)
		if err != nil {
			return nil, err
		}
	}

	handler, err := newHandler(Options{
		Level:           cfg.Logging.Level,
		Format:          cfg.Logging.Format,
		OutputPaths:     []string{"stderr"},
		ComponentLevels: cfg.Logging.ComponentOverrides,
	}, fileHandler)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func parseOverrides(levels map[string]string) map[string]slog.Level {
	if len(levels) == 0 {
		return nil
	}
	out := make(map[string]slog.Level, len(levels))
	for component, level := range levels {
		key := strings.ToLower(strings.TrimSpace(component))
		if key == "" {
			continue
		}
		out[key] = parseLevel(level)
	}
	return out
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		cp := make([]string, len(fallback))
		copy(cp, fallback)
		return cp
	}
	cp := make([]string, len(value))
	copy(cp, value)
	return cp
}

func openWriters(paths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		return os.Stderr, nil
	}
	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
