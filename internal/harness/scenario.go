package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cdo/internal/source"
)

// Scenario is a scripted sequence of store operations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is an optional record file loaded as the initial batch.
	// Relative paths are resolved against the scenario file.
	Source string `yaml:"source,omitempty"`

	// Records is an inline initial batch, appended after Source.
	Records []source.RecordSpec `yaml:"records,omitempty"`

	// StoreID is the store identity. Zero means 1.
	StoreID int64 `yaml:"store_id,omitempty"`

	// Steps run in order after the store is built.
	Steps []Step `yaml:"steps"`
}

// Step is a single store operation.
type Step struct {
	// Op is the operation name, one of the Op* constants.
	Op string `yaml:"op"`

	// ID is the identity argument of get, contains, and by_master.
	ID *int64 `yaml:"id,omitempty"`

	// Name is the argument of by_name and set_name.
	Name *string `yaml:"name,omitempty"`

	// Record is the argument of add, or the master probe of by_master.
	Record *source.RecordSpec `yaml:"record,omitempty"`

	// Records is the argument of add_all.
	Records []source.RecordSpec `yaml:"records,omitempty"`

	// Expect is the expected result. An absent node means no check;
	// an explicit null expects a null result.
	Expect yaml.Node `yaml:"expect,omitempty"`
}

// HasExpect reports whether the step states an expected result.
func (s Step) HasExpect() bool {
	return s.Expect.Kind != 0
}

// Step operations.
const (
	OpAdd        = "add"
	OpAddAll     = "add_all"
	OpGet        = "get"
	OpContains   = "contains"
	OpSize       = "size"
	OpByName     = "by_name"
	OpByMaster   = "by_master"
	OpAttributes = "attributes"
	OpRecords    = "records"
	OpAll        = "all"
	OpHash       = "hash"
	OpName       = "name"
	OpSetName    = "set_name"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Source != "" && !filepath.IsAbs(scenario.Source) {
		scenario.Source = filepath.Join(filepath.Dir(path), scenario.Source)
	}
	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. Source paths are left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, rec := range s.Records {
		if rec.ID == nil {
			return fmt.Errorf("records[%d]: id is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the arguments a step's operation needs.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case OpAdd:
		if s.Record == nil {
			return fmt.Errorf("steps[%d]: record is required for add", index)
		}
		if s.Record.ID == nil {
			return fmt.Errorf("steps[%d]: record id is required for add", index)
		}
	case OpAddAll:
		if len(s.Records) == 0 {
			return fmt.Errorf("steps[%d]: records list is required for add_all", index)
		}
		for j, rec := range s.Records {
			if rec.ID == nil {
				return fmt.Errorf("steps[%d].records[%d]: id is required", index, j)
			}
		}
	case OpGet, OpContains:
		if s.ID == nil {
			return fmt.Errorf("steps[%d]: id is required for %s", index, s.Op)
		}
	case OpByName, OpSetName:
		if s.Name == nil {
			return fmt.Errorf("steps[%d]: name is required for %s", index, s.Op)
		}
	case OpByMaster:
		if (s.ID == nil) == (s.Record == nil) {
			return fmt.Errorf("steps[%d]: exactly one of id or record is required for by_master", index)
		}
		if s.Record != nil && s.Record.ID == nil {
			return fmt.Errorf("steps[%d]: record id is required for by_master", index)
		}
	case OpSize, OpAttributes, OpRecords, OpAll, OpHash, OpName:
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}
