// Package source loads records from files into record.Object values.
//
// Supported inputs:
//   - YAML (.yaml, .yml), decoded strictly: unknown fields are errors
//   - CUE (.cue), evaluated with the CUE Go API; errors carry positions
//   - SQLite (.db, .sqlite, .sqlite3), read-only import of a records table
//
// All loaders produce a Dataset whose records keep file order. Master
// references are given as identities and resolved against the records of
// the same file. Duplicate identities are kept; deciding admission is the
// store's job.
//
// YAML and CUE share one layout:
//
//	name: inventory            # optional store name
//	records:
//	  - id: 1
//	    name: Alpha
//	    description: optional
//	    master: 2              # optional identity of another record
//	    attributes:
//	      weight: 2.0
package source
