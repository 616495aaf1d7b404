package datastore

import (
	"github.com/roach88/cdo/internal/idgen"
	"github.com/roach88/cdo/internal/record"
)

// named exposes NamedDescribable. Its string form deliberately differs
// from its name.
type named struct {
	id   record.ID
	name string
}

func (n named) ID() record.ID { return n.id }
func (n named) Name() string { return n.name }
func (n named) Description() string { return "named " + n.name }
func (n named) String() string { return "str:" + n.name }

// labelled has no capabilities beyond identity and a string form.
type labelled struct {
	id    record.ID
	label string
}

func (l labelled) ID() record.ID { return l.id }
func (l labelled) String() string { return l.label }

// bare has identity only and is not comparable.
type bare struct {
	id   record.ID
	tags []string
}

func (b bare) ID() record.ID { return b.id }

// boxed is a comparable type whose payload may hold non-comparable
// values at runtime.
type boxed struct {
	payload any
	id      record.ID
}

func (b boxed) ID() record.ID { return b.id }

// fixedID returns store options with a deterministic store identity.
func fixedID(start int64) Option {
	return WithIDGenerator(idgen.NewSequence(start))
}

func obj(id record.ID, name string) *record.Object {
	return record.NewObject(id, name)
}
