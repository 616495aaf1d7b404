package record

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/roach88/cdo/internal/idgen"
)

// Object is a general-purpose record: an identity, a name, an optional
// description, a set of typed attributes, and an optional master.
//
// Object implements every capability in this package. Equality and
// hashing cover content only (name, description, attributes, master
// identity), never the object's own identity: two objects with different
// IDs but identical content are Equal.
//
// Object is not safe for concurrent mutation.
type Object struct {
	id          ID
	name        string
	description string
	attrs       Struct
	master      *Object
}

// NewObject creates an object with the given identity and name.
func NewObject(id ID, name string) *Object {
	return &Object{id: id, name: name, attrs: Struct{}}
}

// ID implements Identifiable.
func (o *Object) ID() ID { return o.id }

// Name implements NamedDescribable.
func (o *Object) Name() string { return o.name }

// Description implements NamedDescribable. Falls back to the name when no
// description was set.
func (o *Object) Description() string {
	if o.description == "" {
		return o.name
	}
	return o.description
}

// SetName replaces the display name.
func (o *Object) SetName(name string) *Object {
	o.name = name
	return o
}

// SetDescription replaces the description.
func (o *Object) SetDescription(description string) *Object {
	o.description = description
	return o
}

// Set stores an attribute value. A nil value is stored as Null.
func (o *Object) Set(key string, v Value) *Object {
	if v == nil {
		v = Null{}
	}
	if o.attrs == nil {
		o.attrs = Struct{}
	}
	o.attrs[key] = v
	return o
}

// Get returns an attribute value.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.attrs[key]
	return v, ok
}

// Attributes returns a shallow copy of the attribute map.
func (o *Object) Attributes() Struct {
	return maps.Clone(o.attrs)
}

// AttributeTypes implements AttributeProvider.
func (o *Object) AttributeTypes() map[string]Kind {
	types := make(map[string]Kind, len(o.attrs))
	for k, v := range o.attrs {
		types[k] = v.Kind()
	}
	return types
}

// SetMaster assigns the grouping record. Pass nil to clear it.
func (o *Object) SetMaster(m *Object) *Object {
	o.master = m
	return o
}

// Master implements MasterProvider. Returns a nil interface, never a
// typed nil, when no master is set.
func (o *Object) Master() Identifiable {
	if o.master == nil {
		return nil
	}
	return o.master
}

// MasterID returns the master's identity, if any.
func (o *Object) MasterID() (ID, bool) {
	if o.master == nil {
		return 0, false
	}
	return o.master.id, true
}

// Equal implements Equaler.
func (o *Object) Equal(other any) bool {
	p, ok := other.(*Object)
	if !ok || p == nil {
		return false
	}
	if o == p {
		return true
	}
	if o.name != p.name || o.description != p.description {
		return false
	}
	om, oHas := o.MasterID()
	pm, pHas := p.MasterID()
	if oHas != pHas || om != pm {
		return false
	}
	return equalValues(o.attrs, p.attrs)
}

// Hash implements Hasher. Consistent with Equal.
func (o *Object) Hash() int32 {
	h, err := contentHash32(o)
	if err != nil {
		// Non-finite floats cannot be canonically encoded.
		return o.id.Hash()
	}
	return h
}

// String returns the name, or a placeholder for unnamed objects.
func (o *Object) String() string {
	if o.name != "" {
		return o.name
	}
	return fmt.Sprintf("object#%d", o.id)
}

// contentMap is the canonical input for content hashing.
func (o *Object) contentMap() map[string]any {
	attrs := o.attrs
	if attrs == nil {
		attrs = Struct{}
	}
	m := map[string]any{
		"name":        o.name,
		"description": o.description,
		"attributes":  attrs,
		"master":      nil,
	}
	if id, ok := o.MasterID(); ok {
		m["master"] = int64(id)
	}
	return m
}

type objectJSON struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Master      *ID    `json:"master,omitempty"`
	Attributes  Struct `json:"attributes"`
}

// MarshalJSON encodes the object with its master as an identity reference.
func (o *Object) MarshalJSON() ([]byte, error) {
	view := objectJSON{
		ID:          o.id,
		Name:        o.name,
		Description: o.description,
		Attributes:  o.attrs,
	}
	if view.Attributes == nil {
		view.Attributes = Struct{}
	}
	if id, ok := o.MasterID(); ok {
		view.Master = &id
	}
	return json.Marshal(view)
}

func equalValues(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		switch b.(type) {
		case nil, Null:
			return true
		}
		return false
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalValues(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Struct:
		bv, ok := b.(Struct)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !equalValues(v, w) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Factory creates objects with identities drawn from a Generator.
type Factory struct {
	gen idgen.Generator
}

// NewFactory creates a factory. A nil generator defaults to idgen.UUID.
func NewFactory(gen idgen.Generator) *Factory {
	if gen == nil {
		gen = idgen.UUID{}
	}
	return &Factory{gen: gen}
}

// Create builds an object from alternating attribute keys and values:
//
//	f.Create("sample", "Att A", 2.0, "Att B", "asdf")
//
// Values are converted with FromAny.
func (f *Factory) Create(name string, kv ...any) (*Object, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("odd number of key/value arguments: %d", len(kv))
	}
	o := NewObject(ID(f.gen.Next()), name)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("argument %d: key must be a string, got %T", i, kv[i])
		}
		v, err := FromAny(kv[i+1])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		o.Set(key, v)
	}
	return o, nil
}

// MustCreate is like Create but panics on error.
// Use only in tests or when inputs are known to be valid.
func (f *Factory) MustCreate(name string, kv ...any) *Object {
	o, err := f.Create(name, kv...)
	if err != nil {
		panic(err)
	}
	return o
}
