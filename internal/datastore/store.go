package datastore

import (
	"cmp"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/cdo/internal/idgen"
	"github.com/roach88/cdo/internal/record"
)

const hashSeed int32 = 19

// Option configures a Store at construction.
type Option func(*config)

type config struct {
	gen    idgen.Generator
	logger *slog.Logger
}

// WithIDGenerator sets the source of the store's own identity.
// Defaults to idgen.UUID.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(c *config) {
		if gen != nil {
			c.gen = gen
		}
	}
}

// WithLogger sets the logger used for admission diagnostics.
// Defaults to a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		gen:    idgen.UUID{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store is an append-only, identity-indexed container of records.
//
// Invariants after every call:
//   - every admitted record r satisfies index[r.ID()] == r
//   - every element of the ordered sequence is in the index
//   - attribute names only grow
//
// Store is not safe for concurrent use.
type Store[T record.Identifiable] struct {
	id     record.ID
	name   string
	logger *slog.Logger

	index   map[record.ID]T
	keys    []record.ID // index admission order
	ordered []T

	attributes map[string]struct{}

	hash       int32
	hashCached bool
}

// New creates a store from an initial batch of records, preserving their
// order. The display name is derived from the dynamic type of the first
// record. A nil or empty batch yields an empty, unnamed store.
//
// Every record of the initial batch is sequenced, including records Equal
// to an earlier one. Nil records and repeated identities are skipped so
// both indices keep holding the same records.
func New[T record.Identifiable](records []T, opts ...Option) *Store[T] {
	s := newStore[T](opts)
	if len(records) == 0 {
		return s
	}
	s.name = displayName(records[0])
	for _, rec := range records {
		s.seed(rec)
	}
	return s
}

// NewFromMap creates a store from an identity-keyed map. Go maps are
// unordered, so records are admitted in ascending key order; callers must
// not rely on any other order. Each record is indexed under its own ID(),
// not under the map key.
func NewFromMap[T record.Identifiable](records map[record.ID]T, opts ...Option) *Store[T] {
	s := newStore[T](opts)
	if len(records) == 0 {
		return s
	}
	keys := slices.Sorted(maps.Keys(records))
	s.name = displayName(records[keys[0]])
	for _, k := range keys {
		s.seed(records[k])
	}
	return s
}

func newStore[T record.Identifiable](opts []Option) *Store[T] {
	c := newConfig(opts)
	return &Store[T]{
		id:         record.ID(c.gen.Next()),
		logger:     c.logger,
		index:      make(map[record.ID]T),
		attributes: make(map[string]struct{}),
	}
}

// seed admits a record of the initial batch without the equality check.
func (s *Store[T]) seed(rec T) {
	if record.IsNil(rec) {
		s.logger.Debug("initial record skipped: nil", "store", s.id)
		return
	}
	id := rec.ID()
	if _, exists := s.index[id]; exists {
		s.logger.Debug("initial record skipped: duplicate identity", "store", s.id, "record", id)
		return
	}
	s.index[id] = rec
	s.keys = append(s.keys, id)
	s.ordered = append(s.ordered, rec)
	s.addAttributes(rec)
}

func displayName(v any) string {
	return fmt.Sprintf("Data store for records of type %T", v)
}

// Add admits a record. It returns false, without any mutation, when a
// record with the same identity is already stored or when rec is nil.
//
// A record whose identity is new but which is Equal to a record already in
// the ordered sequence is indexed but not appended to the sequence.
func (s *Store[T]) Add(rec T) bool {
	if record.IsNil(rec) {
		s.logger.Debug("record rejected: nil", "store", s.id)
		return false
	}
	id := rec.ID()
	if _, exists := s.index[id]; exists {
		s.logger.Debug("record rejected: duplicate identity", "store", s.id, "record", id)
		return false
	}

	s.index[id] = rec
	s.keys = append(s.keys, id)
	if s.indexOfEqual(rec) < 0 {
		s.ordered = append(s.ordered, rec)
	} else {
		s.logger.Debug("record indexed but not sequenced: equal record present", "store", s.id, "record", id)
	}
	s.addAttributes(rec)
	return true
}

// AddAll calls Add for each record in order.
func (s *Store[T]) AddAll(records []T) {
	for _, rec := range records {
		s.Add(rec)
	}
}

func (s *Store[T]) indexOfEqual(rec T) int {
	return slices.IndexFunc(s.ordered, func(e T) bool {
		return record.Equal(e, rec)
	})
}

func (s *Store[T]) addAttributes(rec T) {
	ap, ok := any(rec).(record.AttributeProvider)
	if !ok {
		return
	}
	for name := range ap.AttributeTypes() {
		s.attributes[name] = struct{}{}
	}
}

// Get returns the record stored under id.
func (s *Store[T]) Get(id record.ID) (T, bool) {
	rec, ok := s.index[id]
	return rec, ok
}

// Contains reports whether a record with rec's identity is stored.
// It does not compare records by value.
func (s *Store[T]) Contains(rec T) bool {
	if record.IsNil(rec) {
		return false
	}
	_, ok := s.index[rec.ID()]
	return ok
}

// Len returns the number of records in the identity index.
func (s *Store[T]) Len() int {
	return len(s.index)
}

// ByName returns the records, in insertion order, whose name is name.
//
// A record implementing record.NamedDescribable matches on Name() only.
// Any other record matches on its string form (fmt.Sprint).
func (s *Store[T]) ByName(name string) []T {
	var out []T
	for _, rec := range s.ordered {
		if nd, ok := any(rec).(record.NamedDescribable); ok {
			if nd.Name() == name {
				out = append(out, rec)
			}
			continue
		}
		if fmt.Sprint(rec) == name {
			out = append(out, rec)
		}
	}
	return out
}

// ByMaster returns the records, in insertion order, whose master is
// non-nil and Equal to master.
func (s *Store[T]) ByMaster(master T) []T {
	var out []T
	for _, rec := range s.ordered {
		mp, ok := any(rec).(record.MasterProvider)
		if !ok {
			continue
		}
		m := mp.Master()
		if record.IsNil(m) {
			continue
		}
		if record.Equal(m, master) {
			out = append(out, rec)
		}
	}
	return out
}

// Attributes returns the aggregated attribute names, sorted.
// The returned slice is a snapshot owned by the caller.
func (s *Store[T]) Attributes() []string {
	return slices.Sorted(maps.Keys(s.attributes))
}

// HasAttribute reports whether any admitted record exposed the attribute.
func (s *Store[T]) HasAttribute(name string) bool {
	_, ok := s.attributes[name]
	return ok
}

// All iterates the identity index in admission order, including records
// that were indexed but not sequenced. The sequence is restartable.
func (s *Store[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, id := range s.keys {
			if !yield(s.index[id]) {
				return
			}
		}
	}
}

// Records returns a copy of the ordered sequence.
func (s *Store[T]) Records() []T {
	return slices.Clone(s.ordered)
}

// Map returns a copy of the identity index.
func (s *Store[T]) Map() map[record.ID]T {
	return maps.Clone(s.index)
}

// IdentityHash returns a composite hash over the stored records, folded
// as h = 31*h + hash(r) from seed 19 in admission order. Record hashes
// come from record.HashOf.
//
// The value is computed on the first call and cached: records added later
// do not change it.
func (s *Store[T]) IdentityHash() int32 {
	if s.hashCached {
		return s.hash
	}
	h := hashSeed
	for rec := range s.All() {
		h = 31*h + record.HashOf(rec)
	}
	s.hash = h
	s.hashCached = true
	return h
}

// ID returns the store's own identity.
func (s *Store[T]) ID() record.ID {
	return s.id
}

// Name returns the display name, empty for stores built from no records.
func (s *Store[T]) Name() string {
	return s.name
}

// SetName replaces the display name.
func (s *Store[T]) SetName(name string) {
	s.name = name
}

// Description returns the display name.
func (s *Store[T]) Description() string {
	return s.name
}

// String implements fmt.Stringer.
func (s *Store[T]) String() string {
	return fmt.Sprintf("%s (id=%d, records=%d)", cmp.Or(s.name, "unnamed store"), s.id, len(s.index))
}
