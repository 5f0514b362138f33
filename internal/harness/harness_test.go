package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chg/internal/store"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

// Every scenario under testdata/scenarios passes.
func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors:\n%s", strings.Join(result.Errors, "\n"))
		})
	}
}

func TestGolden(t *testing.T) {
	for _, name := range []string{"clock_basic", "clock_budget", "euler_constant_omega"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadScenario(t, name)))
		})
	}
}

func TestRun_StoresRun(t *testing.T) {
	result, err := Run(loadScenario(t, "clock_basic"))
	require.NoError(t, err)

	assert.Equal(t, "scenario-clock_basic", result.Run.ID)
	assert.Equal(t, int64(1), result.Run.Seq)
	assert.Equal(t, store.StatusSolved, result.Run.Status)
	assert.NotEmpty(t, result.Run.TraceHash)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 3, result.Trace.FinalIndex)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadScenario(t, "free_pendulum")

	a, err := Run(s)
	require.NoError(t, err)
	b, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, a.Run.TraceHash, b.Run.TraceHash)
	assert.Equal(t, a.Run.ConfigHash, b.Run.ConfigHash)
}

func TestRun_ExpectationFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "wrong outcome",
			yaml: `
name: wrong_outcome
description: clock always solves
config: {model: clock}
expect: {solved: false}
`,
			want: "expected solved=false",
		},
		{
			name: "wrong value",
			yaml: `
name: wrong_value
description: time[1] is 0.1
config: {model: clock}
expect:
  solved: true
  values: {time: [0, 0.5]}
`,
			want: "node time[1]: expected 0.5",
		},
		{
			name: "unresolved node",
			yaml: `
name: unresolved
description: clock has no mass
config: {model: clock}
expect:
  solved: true
  values: {mass: [1]}
`,
			want: "node mass: not resolved",
		},
		{
			name: "wrong reason",
			yaml: `
name: wrong_reason
description: clock runs out of budget
config: {model: clock, min_index: 10, search_depth: 3}
expect: {solved: false, reason: index_bound}
`,
			want: `expected reason "index_bound"`,
		},
		{
			name: "missing edge",
			yaml: `
name: missing_edge
description: clock has a single edge
config: {model: clock}
expect: {solved: true}
assertions:
  - type: path_contains
    edge: rewind_time
`,
			want: "edge rewind_time",
		},
		{
			name: "wrong order",
			yaml: `
name: wrong_order
description: theta fires before omega in the simple model
config: {model: pendulum/simple}
expect: {solved: true}
assertions:
  - type: path_order
    edges: [integrating_alpha->omega, integrating_omega->theta]
`,
			want: "should be before",
		},
		{
			name: "wrong stored column",
			yaml: `
name: wrong_column
description: clock takes three attempts
config: {model: clock}
expect: {solved: true}
assertions:
  - type: final_state
    table: runs
    expect: {attempts: 4}
`,
			want: `column "attempts" = 4`,
		},
		{
			name: "missing row",
			yaml: `
name: missing_row
description: no run has this id
config: {model: clock}
expect: {solved: true}
assertions:
  - type: final_state
    table: runs
    where: {id: other}
    expect: {status: solved}
`,
			want: "row not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario([]byte(tt.yaml))
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			assert.Contains(t, strings.Join(result.Errors, "\n"), tt.want)
		})
	}
}

func TestRun_UnknownModel(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: unknown
description: no such model
config: {model: pendulum/triple}
expect: {solved: true}
`))
	require.NoError(t, err)

	_, err = New().Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, loadScenario(t, "clock_basic"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"unknown_field.yaml", "field expects not found"},
		{"missing_solved.yaml", "expect.solved is required"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata", "invalid", tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "description: d\nconfig: {model: clock}\nexpect: {solved: true}\n", "name is required"},
		{"no description", "name: n\nconfig: {model: clock}\nexpect: {solved: true}\n", "description is required"},
		{"no model", "name: n\ndescription: d\nexpect: {solved: true}\n", "model is required"},
		{"reason when solved", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true, reason: unresolvable}\n", "expect.reason"},
		{"negative tolerance", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true, tolerance: -1}\n", "tolerance"},
		{"assertion type", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true}\nassertions: [{type: trace_contains}]\n", "unknown assertion type"},
		{"path_count edge", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true}\nassertions: [{type: path_count, count: 1}]\n", "edge is required"},
		{"path_order edges", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true}\nassertions: [{type: path_order}]\n", "edges list is required"},
		{"final_state expect", "name: n\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true}\nassertions: [{type: final_state, table: runs}]\n", "expect is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	doc := []byte("name: same\ndescription: d\nconfig: {model: clock}\nexpect: {solved: true}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), doc, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), doc, 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scenario name")
}

func TestFinalState_RejectsBadIdentifiers(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: injection
description: identifiers are whitelisted
config: {model: clock}
expect: {solved: true}
assertions:
  - type: final_state
    table: "runs; DROP TABLE runs"
    expect: {status: solved}
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, strings.Join(result.Errors, "\n"), "invalid table name")
}

func TestStateValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		expected any
		actual   any
		want     bool
	}{
		{"string", "solved", "solved", true},
		{"bytes", "solved", []byte("solved"), true},
		{"int", 3, int64(3), true},
		{"int mismatch", 3, int64(4), false},
		{"float", 0.2, 0.2 + 1e-12, true},
		{"float vs int column", 2.0, int64(2), true},
		{"bool as int", true, int64(1), true},
		{"nil", nil, nil, true},
		{"nil vs value", nil, int64(0), false},
		{"type mismatch", "3", int64(3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stateValuesEqual(tt.expected, tt.actual))
		})
	}
}
