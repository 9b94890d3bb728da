// Package library turns a map collection on disk into dedup records.
//
// Scanner walks the immediate sub-folders of a library root, parses each
// Info.dat (both the classic underscore-prefixed layout and the newer
// version 4 layout), and derives the identity hash the community index uses:
// SHA-1 over the Info.dat bytes followed by every referenced difficulty file.
// LoadManifest reads record batches that another tool has already produced.
// ApplyMetadata overlays cached community metadata onto records that carry
// none.
package library
