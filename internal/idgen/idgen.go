// Package idgen provides identity generators for stores and records.
//
// Stores never draw identities from hidden global state. Every store and
// record factory is handed a Generator; production code uses UUID, tests
// use Sequence for reproducible identities.
package idgen

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces 64-bit identity values.
type Generator interface {
	Next() int64
}

// UUID generates random identities from the most significant 64 bits of
// a version 4 UUID. Values are collision-improbable, not guaranteed unique,
// and never persisted.
//
// Thread-safety: UUID is stateless and safe for concurrent use.
type UUID struct{}

// Next returns a fresh random identity.
//
// Panics if the system random source fails (should never happen in practice).
func (UUID) Next() int64 {
	u := uuid.Must(uuid.NewRandom())
	return int64(binary.BigEndian.Uint64(u[:8]))
}

// Sequence is a monotonic counter generator for deterministic identities.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	start int64
	seq   atomic.Int64
}

// NewSequence creates a sequence whose first Next() returns start.
func NewSequence(start int64) *Sequence {
	s := &Sequence{start: start}
	s.seq.Store(start - 1)
	return s
}

// Next returns the next value and advances the sequence.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last value handed out without advancing.
// Before the first Next() this is start-1.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}

// Reset rewinds the sequence so the next call to Next() returns start again.
func (s *Sequence) Reset() {
	s.seq.Store(s.start - 1)
}

// Func adapts a plain function to the Generator interface.
type Func func() int64

// Next calls f.
func (f Func) Next() int64 {
	return f()
}
