package harness

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cdo/internal/datastore"
	"github.com/roach88/cdo/internal/record"
)

// AssertionError is reported when a step result or a store invariant
// does not hold.
type AssertionError struct {
	Step     int    // 1-based step number
	Op       string // Operation of the failing step
	Type     string // "expect" or "invariant"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s at step %d (%s)\n", e.Type, e.Step, e.Op)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// assertExpect compares a step result with the step's expect node.
// Both sides are compared by canonical JSON.
func assertExpect(step int, op string, expect *yaml.Node, actual any) error {
	var want any
	if err := expect.Decode(&want); err != nil {
		return fmt.Errorf("step %d: failed to decode expect: %w", step, err)
	}

	wantJSON, err := record.MarshalCanonical(want)
	if err != nil {
		return fmt.Errorf("step %d: expect is not representable: %w", step, err)
	}
	gotJSON, err := record.MarshalCanonical(actual)
	if err != nil {
		return fmt.Errorf("step %d: result is not representable: %w", step, err)
	}

	if bytes.Equal(wantJSON, gotJSON) {
		return nil
	}
	return &AssertionError{
		Step:     step,
		Op:       op,
		Type:     "expect",
		Expected: string(wantJSON),
		Actual:   string(gotJSON),
	}
}

// invariantChecker verifies index consistency after each step. It keeps
// the attribute names seen so far to check that they only grow.
type invariantChecker struct {
	attributes []string
}

// check returns one AssertionError per violated invariant.
func (c *invariantChecker) check(step int, op string, st *datastore.Store[*record.Object]) []*AssertionError {
	var failures []*AssertionError
	fail := func(expected, actual string) {
		failures = append(failures, &AssertionError{
			Step:     step,
			Op:       op,
			Type:     "invariant",
			Expected: expected,
			Actual:   actual,
		})
	}

	indexed := 0
	for rec := range st.All() {
		indexed++
		if got, ok := st.Get(rec.ID()); !ok || got != rec {
			fail(fmt.Sprintf("record %d indexed under its own identity", rec.ID()), "lookup returned a different record")
		}
	}
	if indexed != st.Len() {
		fail(fmt.Sprintf("%d records in iteration", st.Len()), fmt.Sprintf("%d", indexed))
	}

	ordered := st.Records()
	for _, rec := range ordered {
		if got, ok := st.Get(rec.ID()); !ok || got != rec {
			fail(fmt.Sprintf("sequenced record %d reachable by identity", rec.ID()), "not in index")
		}
	}
	if len(ordered) > st.Len() {
		fail(fmt.Sprintf("at most %d sequenced records", st.Len()), fmt.Sprintf("%d", len(ordered)))
	}

	for _, name := range c.attributes {
		if !st.HasAttribute(name) {
			fail(fmt.Sprintf("attribute %q retained", name), "missing")
		}
	}
	c.attributes = st.Attributes()

	return failures
}
