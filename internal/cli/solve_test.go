package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
)

func TestSolve_ClockText(t *testing.T) {
	out, _, err := executeCommand(t, "solve", "--model", "clock")
	require.NoError(t, err)

	assert.Contains(t, out, "Solved time[3] = 0.30000000000000004 (termination index>=3)")
	assert.Contains(t, out, "Critical path:")
	assert.Contains(t, out, "advance_time: time[3]")
	assert.NotContains(t, out, "Run ", "no run is recorded without --db")
}

func TestSolve_JSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", "-m", "clock")
	require.NoError(t, err)

	var result SolveResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.RunID)
	assert.Equal(t, "clock", result.Model)
	assert.NotEmpty(t, result.ConfigHash)
	assert.NotEmpty(t, result.TraceHash)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 3, result.Trace.FinalIndex)
	assert.InDelta(t, 0.3, result.Trace.FinalValue, 1e-12)
	assert.Len(t, result.Trace.Path, 3)
}

func TestSolve_ConfigFile(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", filepath.Join("testdata", "clock.cue"))
	require.NoError(t, err)

	var result SolveResult
	decodeResponse(t, out, &result)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 4, result.Trace.FinalIndex)
	assert.InDelta(t, 1.4, result.Trace.FinalValue, 1e-12)
	assert.Equal(t, "value>=1.2", result.Trace.Termination)
}

func TestSolve_FlagsOverrideFile(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", filepath.Join("testdata", "clock.cue"),
		"--min-index", "6", "--input", "time=2")
	require.NoError(t, err)

	var result SolveResult
	decodeResponse(t, out, &result)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 6, result.Trace.FinalIndex)
	assert.InDelta(t, 2.6, result.Trace.FinalValue, 1e-12)
}

func TestSolve_ValueTermination(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", "-m", "clock",
		"--min-index", "0", "--value-at-least", "0.45")
	require.NoError(t, err)

	var result SolveResult
	decodeResponse(t, out, &result)
	require.NotNil(t, result.Trace)
	assert.Equal(t, 5, result.Trace.FinalIndex)
}

func TestSolve_NoSolution(t *testing.T) {
	out, _, err := executeCommand(t, "solve", "-m", "clock", "--min-index", "10", "--search-depth", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "No solutions found")
	assert.Contains(t, out, "budget_exhausted for time at index 4 after 3/3 attempts")
}

func TestSolve_NoSolutionJSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", "-m", "clock",
		"--min-index", "10", "--search-depth", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoSolution, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, string(engine.ReasonBudgetExhausted), details["reason"])
	assert.EqualValues(t, 3, details["attempts"])
}

func TestSolve_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no model", []string{"solve"}, "model is required"},
		{"unknown model", []string{"solve", "-m", "nope"}, "unknown model"},
		{"unknown model in file", []string{"solve", filepath.Join("testdata", "unknown_model.cue")}, "unknown model"},
		{"schema violation", []string{"solve", filepath.Join("testdata", "invalid.cue")}, "min_index"},
		{"missing file", []string{"solve", filepath.Join("testdata", "missing.cue")}, "missing.cue"},
		{"bad input", []string{"solve", "-m", "clock", "--input", "time=abc"}, "not a number"},
		{"unknown seed", []string{"solve", "-m", "clock", "--input", "nope=1"}, "nope"},
		{"no frames", []string{"solve", "-m", "clock", "--frames"}, "no frame layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSolve_ConfigErrorJSON(t *testing.T) {
	out, _, err := executeCommand(t, "--format", "json", "solve", filepath.Join("testdata", "invalid.cue"))
	require.Error(t, err)

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestSolve_Frames(t *testing.T) {
	out, _, err := executeCommand(t, "solve", "-m", "pendulum/driven", "--frames")
	require.NoError(t, err)
	assert.Contains(t, out, "Frames (index time x1 y1 x2 y2):")
}

func TestSolve_RecordsRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, _, err := executeCommand(t, "--format", "json", "solve", "-m", "clock", "--db", dbPath)
	require.NoError(t, err)
	resp := decodeResponse(t, out, nil)
	assert.NotEmpty(t, resp.RunID)

	out, _, err = executeCommand(t, "solve", "-m", "clock", "--min-index", "10", "--search-depth", "3", "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, out, "Run ")

	var runs []RunSummary
	out, _, err = executeCommand(t, "--format", "json", "runs", "--db", dbPath)
	require.NoError(t, err)
	decodeResponse(t, out, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, resp.RunID, runs[0].ID)
}

func TestBuildConfig_FileOnly(t *testing.T) {
	opts := &SolveOptions{RootOptions: &RootOptions{Format: "text"}}
	cmd := NewSolveCommand(opts.RootOptions)

	cfg, err := buildConfig(opts, []string{filepath.Join("testdata", "clock.cue")}, cmd)
	require.NoError(t, err)
	assert.Equal(t, "clock", cfg.Model)
	require.NotNil(t, cfg.MinIndex)
	assert.Equal(t, 4, *cfg.MinIndex)
	assert.Equal(t, map[string]float64{"time": 1}, cfg.Inputs)
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestConfigError_ReportsWriteFailure(t *testing.T) {
	cause := &config.Error{Field: "model", Message: "model is required"}

	f := &OutputFormatter{Format: "json", Writer: failingWriter{}}
	err := configError(f, cause)
	require.Error(t, err)
	assert.ErrorContains(t, err, "stdout closed")

	f = &OutputFormatter{Format: "text", Writer: failingWriter{}}
	err = configError(f, cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSolve_RecordFailureJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing-dir", "runs.db")

	out, _, err := executeCommand(t, "--format", "json", "solve", "-m", "clock", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeStore, resp.Error.Code)
}
