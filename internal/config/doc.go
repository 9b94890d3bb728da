// Package config loads, normalizes, and validates mapcull configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// MAPCULL_LIBRARY_DIR. The Config type centralizes every knob the CLI needs:
// where the map library lives, where analysis history is stored, the fuzzy
// matching thresholds, ranking weights, and prune behaviour.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
