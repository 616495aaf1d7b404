// Package harness runs scripted scenarios against a data store.
//
// A scenario seeds a Store[*record.Object] with an initial batch, then
// executes a list of steps. Each step calls one store operation and may
// state the value it expects back. Every step is recorded in a trace, and
// the store's index invariants are checked after each one.
//
// # Scenario Format
//
//	name: grouping
//	description: "Vehicles grouped under a master record"
//	source: vehicles.yaml       # optional record file, relative to the scenario
//	store_id: 100               # optional, defaults to 1
//	records:                    # optional inline initial batch
//	  - id: 1
//	    name: vehicles
//	  - id: 2
//	    name: car
//	    master: 1
//	steps:
//	  - op: add
//	    record: {id: 3, name: bike, master: 1}
//	    expect: true
//	  - op: by_master
//	    id: 1
//	    expect: [2, 3]
//
// # Operations
//
//   - add: admit one record; result is the admission flag
//   - add_all: admit a batch; result is the size afterwards
//   - get: look up by identity; result is the record name or null
//   - contains: identity membership; result is a bool
//   - size: number of indexed records
//   - by_name: identities of records with the given name
//   - by_master: identities of records grouped under a master, given by
//     id (looked up in the store) or by an inline record probe
//   - attributes: sorted attribute names
//   - records: identities of the ordered sequence
//   - all: identities in index iteration order
//   - hash: the cached identity hash
//   - name, set_name: the store's display name
//
// Expected values are compared through their canonical JSON encoding,
// so YAML integers match record identities regardless of Go type.
//
// # Deterministic Testing
//
// The store identity comes from an idgen.Sequence starting at store_id,
// and store logging is discarded, so traces are reproducible and can be
// compared against golden files with RunWithGolden.
package harness
