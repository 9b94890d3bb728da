// Package logging assembles structured slog loggers and formatting helpers used
// across mapcull.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and applies per-component level overrides so a noisy subsystem
// (the scanner, say) can be turned up without flooding the rest of the
// output. Context helpers tag log lines with the analysis run identifier. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the tool.
package logging
