// Package preflight provides readiness checks for the filesystem paths
// mapcull reads and writes.
//
// The CLI "mapcull check" command runs RunAll and renders each Result;
// "mapcull prune --yes" runs the same checks first and refuses to start
// when one fails.
package preflight
