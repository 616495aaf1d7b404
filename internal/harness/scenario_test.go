package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Inventory(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/inventory.yaml")
	require.NoError(t, err)

	assert.Equal(t, "inventory", scenario.Name)
	assert.NotEmpty(t, scenario.Description)
	assert.Empty(t, scenario.Source)
	require.Len(t, scenario.Records, 3)
	require.Len(t, scenario.Steps, 12)

	add := scenario.Steps[3]
	assert.Equal(t, OpAdd, add.Op)
	require.NotNil(t, add.Record)
	assert.Equal(t, int64(4), *add.Record.ID)
	assert.True(t, add.HasExpect())
}

func TestLoadScenario_ResolvesSourceRelativeToFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sourced.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "records", "fleet.yaml"), scenario.Source)
	assert.Equal(t, int64(500), scenario.StoreID)
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_ExplicitNullExpect(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: nulls
description: explicit null
steps:
  - op: get
    id: 1
    expect: null
  - op: size
`))
	require.NoError(t, err)
	assert.True(t, scenario.Steps[0].HasExpect())
	assert.False(t, scenario.Steps[1].HasExpect())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: y\nstep: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: y\nsteps: [{op: size}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nsteps: [{op: size}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: y\n",
			wantErr: "steps list is required",
		},
		{
			name:    "record without id",
			yaml:    "name: x\ndescription: y\nrecords: [{name: a}]\nsteps: [{op: size}]\n",
			wantErr: "records[0]: id is required",
		},
		{
			name:    "missing op",
			yaml:    "name: x\ndescription: y\nsteps: [{id: 1}]\n",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: x\ndescription: y\nsteps: [{op: delete}]\n",
			wantErr: `unknown op "delete"`,
		},
		{
			name:    "add without record",
			yaml:    "name: x\ndescription: y\nsteps: [{op: add}]\n",
			wantErr: "record is required for add",
		},
		{
			name:    "add without record id",
			yaml:    "name: x\ndescription: y\nsteps: [{op: add, record: {name: a}}]\n",
			wantErr: "record id is required for add",
		},
		{
			name:    "add_all without records",
			yaml:    "name: x\ndescription: y\nsteps: [{op: add_all}]\n",
			wantErr: "records list is required for add_all",
		},
		{
			name:    "get without id",
			yaml:    "name: x\ndescription: y\nsteps: [{op: get}]\n",
			wantErr: "id is required for get",
		},
		{
			name:    "by_name without name",
			yaml:    "name: x\ndescription: y\nsteps: [{op: by_name}]\n",
			wantErr: "name is required for by_name",
		},
		{
			name:    "by_master with both id and record",
			yaml:    "name: x\ndescription: y\nsteps: [{op: by_master, id: 1, record: {id: 2}}]\n",
			wantErr: "exactly one of id or record",
		},
		{
			name:    "by_master with neither",
			yaml:    "name: x\ndescription: y\nsteps: [{op: by_master}]\n",
			wantErr: "exactly one of id or record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_EmptyNameAllowedForByName(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: x
description: y
steps:
  - op: by_name
    name: ""
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.Steps[0].Name)
	assert.Equal(t, "", *scenario.Steps[0].Name)
}

func TestLoadScenario_FromTempFile(t *testing.T) {
	path := writeScenario(t, `
name: temp
description: relative source
source: records.yaml
steps:
  - op: size
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "records.yaml"), scenario.Source)
}
