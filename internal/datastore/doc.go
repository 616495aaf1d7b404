// Package datastore provides Store, an in-memory container for
// identity-bearing records.
//
// A Store keeps two indices over the same records:
//   - an identity index (record.ID -> record) for O(1) lookup
//   - an ordered sequence preserving insertion order
//
// and aggregates the attribute names of every record that implements
// record.AttributeProvider. Name and master lookups use the optional
// record.NamedDescribable and record.MasterProvider capabilities when a
// record has them.
//
// # Append-only
//
// Records are admitted with Add and never removed, replaced, or
// reordered. A record's identity must not change while it is stored.
//
// # Known quirks
//
// These behaviors are kept for compatibility and are relied on by tests:
//
//   - Add (but not the initial batch given to New) indexes a record with a
//     new identity even when an Equal record (record.Equal) is already in
//     the ordered sequence, yet does not append it to the sequence. Len and
//     All see such a record; Records, ByName, and ByMaster do not.
//   - IdentityHash is computed once and cached. Records added afterwards do
//     not change it.
//
// # Concurrency
//
// Store performs no synchronization. Callers that share a Store between
// goroutines must serialize all access, reads included.
package datastore
