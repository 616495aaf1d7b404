package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type plainRecord struct {
	id   ID
	tags []string
}

func (p plainRecord) ID() ID { return p.id }

type keyRecord struct{ id ID }

// boxedRecord has a comparable type whose payload may hold a slice.
type boxedRecord struct {
	payload any
	id      ID
}

func (b boxedRecord) ID() ID { return b.id }

func (k keyRecord) ID() ID { return k.id }

func TestIDHash(t *testing.T) {
	assert.Equal(t, int32(5), ID(5).Hash())
	assert.Equal(t, int32(1), ID(1<<32).Hash())
	assert.Equal(t, int32(0), ID(-1).Hash())
}

func TestEqual(t *testing.T) {
	a := NewObject(1, "x")
	b := NewObject(2, "x")
	var nilObj *Object

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equaler", a, b, true},
		{"comparable equal", keyRecord{1}, keyRecord{1}, true},
		{"comparable different", keyRecord{1}, keyRecord{2}, false},
		{"different types", keyRecord{1}, plainRecord{id: 1}, false},
		{"non-comparable", plainRecord{id: 1}, plainRecord{id: 1}, false},
		{"boxed comparable payload", boxedRecord{payload: "p", id: 1}, boxedRecord{payload: "p", id: 1}, true},
		{"boxed slice payload", boxedRecord{payload: []string{"a"}, id: 1}, boxedRecord{payload: []string{"a"}, id: 1}, false},
		{"boxed slice against comparable", boxedRecord{payload: "p", id: 1}, boxedRecord{payload: []string{"a"}, id: 1}, false},
		{"both nil", nil, nilObj, true},
		{"one nil", a, nil, false},
		{"typed nil vs value", nilObj, a, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestHashOf(t *testing.T) {
	assert.Equal(t, ID(12).Hash(), HashOf(keyRecord{12}))

	o := NewObject(12, "x")
	assert.Equal(t, o.Hash(), HashOf(o))
}

func TestIsNil(t *testing.T) {
	var nilObj *Object
	var nilIface Identifiable

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(nilObj))
	assert.True(t, IsNil(nilIface))
	assert.False(t, IsNil(NewObject(1, "x")))
	assert.False(t, IsNil(keyRecord{1}))
}
