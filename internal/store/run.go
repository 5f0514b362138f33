package store

import (
	"errors"
	"fmt"

	"github.com/roach88/chg/internal/config"
	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/ir"
)

// Status is the outcome of a recorded solve.
type Status string

const (
	StatusSolved     Status = "solved"
	StatusNoSolution Status = "no_solution"
)

// Run is one recorded solve.
type Run struct {
	// ID and Seq are assigned by WriteRun when empty.
	ID  string
	Seq int64

	Model      string
	Target     string
	Config     *config.Solve
	ConfigHash string

	Status Status
	Reason engine.Reason // set when Status is StatusNoSolution

	// FinalIndex is the terminating index of a solved run, or the index the
	// search was working on when it gave up.
	FinalIndex int
	FinalValue float64
	Attempts   int

	// Trace and TraceHash are set for solved runs.
	Trace     *engine.Trace
	TraceHash string

	EngineVersion string
	FormatVersion string
}

// NewRun builds the record of a solve from its configuration, target and
// result. solveErr must be nil or a no-solution error; any other error is
// returned unchanged since there is nothing meaningful to record.
func NewRun(cfg *config.Solve, target string, trace *engine.Trace, solveErr error) (Run, error) {
	hash, err := cfg.Hash()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	run := Run{
		Model:         cfg.Model,
		Target:        target,
		Config:        cfg,
		ConfigHash:    hash,
		EngineVersion: ir.EngineVersion,
		FormatVersion: ir.FormatVersion,
	}

	if solveErr != nil {
		var ns *engine.NoSolutionError
		if !errors.As(solveErr, &ns) {
			return Run{}, solveErr
		}
		run.Status = StatusNoSolution
		run.Reason = ns.Reason
		run.FinalIndex = ns.Index
		run.Attempts = ns.Attempts
		return run, nil
	}

	if trace == nil {
		return Run{}, fmt.Errorf("new run: solved run without a trace")
	}
	traceHash, err := trace.Hash()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	run.Status = StatusSolved
	run.FinalIndex = trace.FinalIndex
	run.FinalValue = trace.FinalValue
	run.Attempts = trace.Stats.Attempts
	run.Trace = trace
	run.TraceHash = traceHash
	return run, nil
}
