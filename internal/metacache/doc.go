// Package metacache persists community metadata for maps, keyed by identity
// hash, in a small JSON file.
//
// The analysis itself never talks to the network. Any fetcher can export its
// results as a JSON array of {hash, metadata} objects and hand them to Import;
// the scanner then overlays cached entries onto records that carry no
// metadata of their own. An empty cache path disables the cache entirely.
package metacache
