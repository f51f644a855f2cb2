package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ResolvesCatalogRelativeToFile(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "qcf_c.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "qcf_c", s.Name)
	assert.Equal(t, "special_motions.QCF", s.Motion)
	assert.Equal(t, map[string]string{"button": "C"}, s.Params)
	assert.Equal(t, filepath.Join("..", "catalog", "testdata", "kof.yaml"), s.Catalog)
	require.Len(t, s.Assertions, 5)
	require.NotNil(t, s.Assertions[4].Matches)
	assert.True(t, *s.Assertions[4].Matches)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, `
name: base
description: catalog relative to an explicit base
catalog: catalog/testdata/kof.yaml
motion: movement.dash
assertions:
  - type: total_frames
    count: 6
`)
	s, err := LoadScenarioWithBasePath(path, "..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "catalog", "testdata", "kof.yaml"), s.Catalog)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: assertion instead of assertions
builtin: hadouken
assertion:
  - type: total_frames
    count: 6
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario(t *testing.T) {
	kof := filepath.Join("..", "catalog", "testdata", "kof.yaml")
	total := []Assertion{{Type: AssertTotalFrames, Count: 6}}

	tests := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{"valid builtin", Scenario{Name: "n", Description: "d", Builtin: "hadouken", Assertions: total}, ""},
		{"valid expect without assertions", Scenario{Name: "n", Description: "d", Catalog: kof, Motion: "combos.loop_a", Expect: &ExpectClause{Error: ErrorCycle}}, ""},
		{"no name", Scenario{Description: "d", Builtin: "hadouken", Assertions: total}, "name is required"},
		{"no description", Scenario{Name: "n", Builtin: "hadouken", Assertions: total}, "description is required"},
		{"no source", Scenario{Name: "n", Description: "d", Assertions: total}, "one of motion or builtin"},
		{"both sources", Scenario{Name: "n", Description: "d", Catalog: kof, Motion: "movement.dash", Builtin: "hadouken", Assertions: total}, "mutually exclusive"},
		{"motion without catalog", Scenario{Name: "n", Description: "d", Motion: "movement.dash", Assertions: total}, "catalog is required"},
		{"missing catalog", Scenario{Name: "n", Description: "d", Catalog: "nope.yaml", Motion: "movement.dash", Assertions: total}, "catalog file not found"},
		{"bad ref", Scenario{Name: "n", Description: "d", Catalog: kof, Motion: "dash", Assertions: total}, "dash"},
		{"unknown builtin", Scenario{Name: "n", Description: "d", Builtin: "tatsumaki", Assertions: total}, "unknown builtin"},
		{"negative start", Scenario{Name: "n", Description: "d", Builtin: "hadouken", Start: -1, Assertions: total}, "start must be non-negative"},
		{"bad step", Scenario{Name: "n", Description: "d", Builtin: "hadouken", Steps: []string{"next"}, Assertions: total}, "steps[0]"},
		{"unknown error kind", Scenario{Name: "n", Description: "d", Builtin: "hadouken", Expect: &ExpectClause{Error: "boom"}}, "unknown kind"},
		{"no assertions", Scenario{Name: "n", Description: "d", Builtin: "hadouken"}, "assertions list is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateScenario(&tt.scenario)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAssertion(t *testing.T) {
	yes := true
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"frame", Assertion{Type: AssertFrame, Tick: 2, Buttons: []string{"down", "RIGHT"}}, ""},
		{"frame release", Assertion{Type: AssertFrame, Tick: 2}, ""},
		{"frame unknown button", Assertion{Type: AssertFrame, Buttons: []string{"Z"}}, `unknown button "Z"`},
		{"frame negative tick", Assertion{Type: AssertFrame, Tick: -1}, "tick must be non-negative"},
		{"order", Assertion{Type: AssertOrder, Sets: [][]string{{"A"}, {}}}, ""},
		{"order empty", Assertion{Type: AssertOrder}, "sets list is required"},
		{"count negative", Assertion{Type: AssertCount, Count: -1}, "count must be non-negative"},
		{"total negative", Assertion{Type: AssertTotalFrames, Count: -1}, "count must be non-negative"},
		{"journal", Assertion{Type: AssertJournal, Matches: &yes}, ""},
		{"journal empty", Assertion{Type: AssertJournal}, "journal needs"},
		{"missing type", Assertion{}, "type is required"},
		{"unknown type", Assertion{Type: "trace_contains"}, "unknown assertion type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssertion(0, &tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
