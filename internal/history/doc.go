// Package history persists duplicate analyses and the prune actions taken on
// them in SQLite.
//
// Each analysis is stored as a Run with a UUID identifier, headline totals,
// and the full result as JSON so a later prune invocation can act on exactly
// what the user reviewed. Prune entries record, per map folder, whether it
// was moved to the trash, deleted, skipped, or only planned (dry run).
//
// Schema changes are additive files under migrations/, applied in name order
// and tracked in schema_migrations.
package history
