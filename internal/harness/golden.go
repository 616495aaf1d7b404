package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/cdo/internal/record"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	StoreID      int64        `json:"store_id"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to plain data accepted by
// record.MarshalCanonical.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step":   event.Step,
			"op":     event.Op,
			"result": event.Result,
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"store_id":      s.StoreID,
		"trace":         traceList,
	}
}

// MarshalSnapshot encodes a scenario trace as canonical JSON.
func MarshalSnapshot(scenarioName string, storeID int64, result *Result) ([]byte, error) {
	if storeID == 0 {
		storeID = 1
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		StoreID:      storeID,
		Trace:        result.Trace,
	}
	return record.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	traceJSON, err := MarshalSnapshot(scenario.Name, scenario.StoreID, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario. The snapshot uses the default store
// identity.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalSnapshot(scenarioName, 0, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
