package record

import "reflect"

// ID is the opaque 64-bit identity a record exposes as its primary key.
type ID int64

// Hash folds the identity into 32 bits (high word XOR low word).
func (id ID) Hash() int32 {
	return int32(uint64(id) ^ uint64(id)>>32)
}

// Identifiable is required of every stored record. The returned ID must
// not change while the record is stored.
type Identifiable interface {
	ID() ID
}

// NamedDescribable exposes a display name and a free-form description.
type NamedDescribable interface {
	Name() string
	Description() string
}

// AttributeProvider exposes attribute names mapped to their value kinds.
type AttributeProvider interface {
	AttributeTypes() map[string]Kind
}

// MasterProvider exposes an optional grouping record. A nil return means
// the record has no master.
type MasterProvider interface {
	Master() Identifiable
}

// Equaler is implemented by records with value equality.
type Equaler interface {
	Equal(other any) bool
}

// Hasher is implemented by records that provide their own hash.
// Equal records must return equal hashes.
type Hasher interface {
	Hash() int32
}

// Equal reports whether a and b are equal records.
//
// Resolution order:
//  1. a implements Equaler: a.Equal(b)
//  2. both share a dynamic type and a's value is comparable: a == b
//  3. otherwise: false
//
// Comparability is checked on the value, not the type, so a struct whose
// interface fields hold slices or maps is unequal rather than a panic.
func Equal(a, b any) bool {
	if IsNil(a) || IsNil(b) {
		return IsNil(a) && IsNil(b)
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}

// HashOf returns v's Hasher hash, or the identity fold for records
// without one.
func HashOf(v Identifiable) int32 {
	if h, ok := v.(Hasher); ok {
		return h.Hash()
	}
	return v.ID().Hash()
}

// IsNil reports whether v is a nil interface or a typed nil.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
