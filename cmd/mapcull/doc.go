// Package main hosts the mapcull CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the map library (or a manifest), runs
// the duplicate analysis, renders clusters, persists runs to the history
// database, and prunes redundant maps from a saved run. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
