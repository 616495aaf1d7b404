package datastore

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/roach88/cdo/internal/record"
)

// genObject draws objects from a small identity and content space so that
// duplicate identities and equal-content records both occur often.
func genObject() *rapid.Generator[*record.Object] {
	return rapid.Custom(func(t *rapid.T) *record.Object {
		id := rapid.Int64Range(1, 12).Draw(t, "id")
		name := rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "name")
		o := record.NewObject(record.ID(id), name)
		n := rapid.IntRange(0, 3).Draw(t, "attrs")
		for i := 0; i < n; i++ {
			key := rapid.SampledFrom([]string{"k1", "k2", "k3", "k4", "k5"}).Draw(t, fmt.Sprintf("key%d", i))
			o.Set(key, record.Int(rapid.Int64Range(0, 2).Draw(t, fmt.Sprintf("val%d", i))))
		}
		return o
	})
}

// checkIndices verifies identity lookup and index/sequence correspondence.
func checkIndices(t *rapid.T, s *Store[*record.Object]) {
	all := slices.Collect(s.All())
	if len(all) != s.Len() {
		t.Fatalf("All() yielded %d records, Len() = %d", len(all), s.Len())
	}
	for _, r := range all {
		got, ok := s.Get(r.ID())
		if !ok || got != r {
			t.Fatalf("record %d reachable via All() but not via Get()", r.ID())
		}
	}
	for _, r := range s.Records() {
		got, ok := s.Get(r.ID())
		if !ok || got != r {
			t.Fatalf("sequenced record %d missing from identity index", r.ID())
		}
	}
	if len(s.Records()) > s.Len() {
		t.Fatalf("sequence longer than index: %d > %d", len(s.Records()), s.Len())
	}
}

func TestProperty_AdmittedRecordsAreReachable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.SliceOfN(genObject(), 0, 6).Draw(t, "initial")
		s := New(initial, fixedID(1))
		checkIndices(t, s)

		adds := rapid.SliceOfN(genObject(), 0, 20).Draw(t, "adds")
		for _, r := range adds {
			_, existed := s.Get(r.ID())
			before := s.Len()

			ok := s.Add(r)

			if ok == existed {
				t.Fatalf("Add(%d) = %v, identity previously present = %v", r.ID(), ok, existed)
			}
			if ok {
				got, found := s.Get(r.ID())
				if !found || got != r {
					t.Fatalf("admitted record %d not returned by Get", r.ID())
				}
				if s.Len() != before+1 {
					t.Fatalf("Len() = %d after admission, want %d", s.Len(), before+1)
				}
			} else if s.Len() != before {
				t.Fatalf("Len() changed on rejected Add: %d -> %d", before, s.Len())
			}
			checkIndices(t, s)
		}
	})
}

func TestProperty_DuplicateAddIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.SliceOfN(genObject(), 0, 8).Draw(t, "initial")
		r := genObject().Draw(t, "record")
		s := New(initial, fixedID(1))

		s.Add(r)
		size := s.Len()
		recs := s.Records()

		if s.Add(r) {
			t.Fatalf("second Add of identity %d returned true", r.ID())
		}
		if s.Len() != size {
			t.Fatalf("Len() changed on duplicate Add: %d -> %d", size, s.Len())
		}
		if !slices.Equal(recs, s.Records()) {
			t.Fatalf("sequence changed on duplicate Add")
		}
	})
}

func TestProperty_AttributesNeverShrink(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New[*record.Object](nil, fixedID(1))
		prev := s.Attributes()

		adds := rapid.SliceOfN(genObject(), 1, 20).Draw(t, "adds")
		for _, r := range adds {
			s.Add(r)
			cur := s.Attributes()
			for _, name := range prev {
				if !slices.Contains(cur, name) {
					t.Fatalf("attribute %q disappeared", name)
				}
			}
			if !slices.IsSorted(cur) {
				t.Fatalf("attributes not sorted: %v", cur)
			}
			prev = cur
		}
	})
}

func TestProperty_SequenceHoldsNoEqualPairsFromAdd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New[*record.Object](nil, fixedID(1))
		for _, r := range rapid.SliceOfN(genObject(), 1, 20).Draw(t, "adds") {
			s.Add(r)
		}

		recs := s.Records()
		for i := range recs {
			for j := i + 1; j < len(recs); j++ {
				if recs[i].Equal(recs[j]) {
					t.Fatalf("records %d and %d are equal but both sequenced", recs[i].ID(), recs[j].ID())
				}
			}
		}
	})
}
