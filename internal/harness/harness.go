package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/cdo/internal/datastore"
	"github.com/roach88/cdo/internal/idgen"
	"github.com/roach88/cdo/internal/record"
	"github.com/roach88/cdo/internal/source"
)

// Harness executes the steps of one scenario against one store.
type Harness struct {
	store      *datastore.Store[*record.Object]
	logger     *slog.Logger
	invariants invariantChecker
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh store whose identity comes from a
// deterministic sequence.
//
// Execution flow:
// 1. Load the source file, if any, and build the inline records
// 2. Create the store from the combined initial batch
// 3. Execute steps, checking expectations and invariants after each
// 4. Return result with pass/fail, trace, and errors
//
// An error is returned when the scenario cannot be executed at all, such
// as an unreadable source or an add step naming an unknown master.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for source loading.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	initial, name, err := initialBatch(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial records: %w", err)
	}

	storeID := scenario.StoreID
	if storeID == 0 {
		storeID = 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store: datastore.New(initial,
			datastore.WithIDGenerator(idgen.NewSequence(storeID)),
			datastore.WithLogger(logger),
		),
		logger: logger,
	}
	if name != "" {
		h.store.SetName(name)
	}

	result := NewResult()
	for _, failure := range h.invariants.check(0, "initial", h.store) {
		result.AddError(failure.Error())
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(i+1, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute step %d: %w", i+1, err)
		}
	}

	result.StoreName = h.store.Name()
	result.Size = h.store.Len()
	return result, nil
}

// initialBatch loads the scenario's source file and appends its inline
// records. Inline masters resolve to the first record with that identity,
// from the source file or the inline list.
func initialBatch(ctx context.Context, scenario *Scenario) ([]*record.Object, string, error) {
	var (
		records []*record.Object
		name    string
	)
	if scenario.Source != "" {
		ds, err := source.Load(ctx, scenario.Source)
		if err != nil {
			return nil, "", err
		}
		records = ds.Records
		name = ds.Name
	}

	inline := make([]*record.Object, len(scenario.Records))
	for i, spec := range scenario.Records {
		rec, err := spec.Object()
		if err != nil {
			return nil, "", fmt.Errorf("records[%d]: %w", i, err)
		}
		inline[i] = rec
	}
	records = append(records, inline...)

	for i, spec := range scenario.Records {
		if spec.Master == nil {
			continue
		}
		m, ok := firstWithID(records, record.ID(*spec.Master))
		if !ok {
			return nil, "", fmt.Errorf("records[%d]: record %d: %w %d", i, *spec.ID, errUnknownMaster, *spec.Master)
		}
		inline[i].SetMaster(m)
	}
	return records, name, nil
}

func firstWithID(records []*record.Object, id record.ID) (*record.Object, bool) {
	for _, rec := range records {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}

var errUnknownMaster = errors.New("unknown master")

// buildRecord builds a record from its spec, resolving the master
// reference through lookup.
func buildRecord(spec source.RecordSpec, lookup func(record.ID) (*record.Object, bool)) (*record.Object, error) {
	rec, err := spec.Object()
	if err != nil {
		return nil, err
	}
	if spec.Master != nil {
		m, ok := lookup(record.ID(*spec.Master))
		if !ok {
			return nil, fmt.Errorf("record %d: %w %d", *spec.ID, errUnknownMaster, *spec.Master)
		}
		rec.SetMaster(m)
	}
	return rec, nil
}

// executeStep runs one step, traces it, and checks its expectation and
// the store invariants.
func (h *Harness) executeStep(n int, step Step, result *Result) error {
	args, out, err := h.apply(step)
	if err != nil {
		return err
	}
	result.AddTrace(n, step.Op, args, out)

	if step.HasExpect() {
		if err := assertExpect(n, step.Op, &step.Expect, out); err != nil {
			var assertErr *AssertionError
			if !errors.As(err, &assertErr) {
				return err
			}
			result.AddError(assertErr.Error())
		}
	}
	for _, failure := range h.invariants.check(n, step.Op, h.store) {
		result.AddError(failure.Error())
	}

	h.logger.Info("step completed",
		"step", n,
		"op", step.Op,
		"size", h.store.Len(),
	)
	return nil
}

// apply performs the store operation named by the step and returns the
// traced arguments and result.
func (h *Harness) apply(step Step) (map[string]any, any, error) {
	st := h.store
	switch step.Op {
	case OpAdd:
		rec, err := buildRecord(*step.Record, st.Get)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"id": int64(rec.ID())}, st.Add(rec), nil

	case OpAddAll:
		batch := make([]*record.Object, 0, len(step.Records))
		ids := make([]any, 0, len(step.Records))
		for _, spec := range step.Records {
			rec, err := buildRecord(spec, func(id record.ID) (*record.Object, bool) {
				if m, ok := st.Get(id); ok {
					return m, true
				}
				return firstWithID(batch, id)
			})
			if err != nil {
				return nil, nil, err
			}
			batch = append(batch, rec)
			ids = append(ids, int64(rec.ID()))
		}
		st.AddAll(batch)
		return map[string]any{"ids": ids}, int64(st.Len()), nil

	case OpGet:
		id := record.ID(*step.ID)
		args := map[string]any{"id": int64(id)}
		if rec, ok := st.Get(id); ok {
			return args, rec.Name(), nil
		}
		return args, nil, nil

	case OpContains:
		id := record.ID(*step.ID)
		return map[string]any{"id": int64(id)}, st.Contains(record.NewObject(id, "")), nil

	case OpSize:
		return nil, int64(st.Len()), nil

	case OpByName:
		return map[string]any{"name": *step.Name}, identities(st.ByName(*step.Name)), nil

	case OpByMaster:
		if step.ID != nil {
			id := record.ID(*step.ID)
			args := map[string]any{"id": int64(id)}
			master, ok := st.Get(id)
			if !ok {
				return args, []any{}, nil
			}
			return args, identities(st.ByMaster(master)), nil
		}
		probe, err := buildRecord(*step.Record, st.Get)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"probe": int64(probe.ID())}, identities(st.ByMaster(probe)), nil

	case OpAttributes:
		names := st.Attributes()
		out := make([]any, len(names))
		for i, n := range names {
			out[i] = n
		}
		return nil, out, nil

	case OpRecords:
		return nil, identities(st.Records()), nil

	case OpAll:
		var out []any
		for rec := range st.All() {
			out = append(out, int64(rec.ID()))
		}
		if out == nil {
			out = []any{}
		}
		return nil, out, nil

	case OpHash:
		return nil, st.IdentityHash(), nil

	case OpName:
		return nil, st.Name(), nil

	case OpSetName:
		st.SetName(*step.Name)
		return map[string]any{"name": *step.Name}, st.Name(), nil

	default:
		return nil, nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func identities(records []*record.Object) []any {
	ids := make([]any, len(records))
	for i, rec := range records {
		ids[i] = int64(rec.ID())
	}
	return ids
}
