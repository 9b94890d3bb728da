// Package prune removes the redundant maps a duplicate analysis identified.
//
// The Executor only ever touches folders below the library root, never a
// folder that another cluster recommends keeping, and never the same folder
// twice. It serializes against other mapcull processes with a lock file in
// the library root. Dry runs (the default) only measure what would be
// reclaimed. Trash mode moves folders under trash_dir/<run id>/ so a prune can
// be undone by hand; delete mode removes them.
package prune
