package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/store"
)

// Harness runs scenarios.
type Harness struct {
	logger   *slog.Logger
	resolver *engine.Resolver
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the resolver. Scenarios are silent
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	h.resolver = engine.New(engine.WithLogger(h.logger))
	return h
}

// Run executes a scenario with a silent logger.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
// 1. Plan the configuration against the model catalog
// 2. Solve
// 3. Record the run under the fixed ID "scenario-<name>"
// 4. Check expectations and evaluate assertions
//
// The error return is reserved for scenarios that cannot run (bad model,
// store failure, cancellation); a solve that misses its expectations is a
// failing Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	plan, err := scenario.Config.Plan()
	if err != nil {
		return nil, fmt.Errorf("plan scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(store.NewFixedGenerator("scenario-"+scenario.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	trace, solveErr := h.resolver.Solve(ctx, plan.Registry, plan.Request)
	run, err := store.NewRun(&scenario.Config, plan.Request.Target, trace, solveErr)
	if err != nil {
		return nil, fmt.Errorf("solve scenario %s: %w", scenario.Name, err)
	}
	if run, err = st.WriteRun(ctx, run); err != nil {
		return nil, err
	}

	result := NewResult()
	result.Trace = trace
	result.Run = run

	checkExpect(scenario.Expect, run, trace, result)

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(trace, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario complete",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"status", run.Status,
		"attempts", run.Attempts,
	)
	return result, nil
}

// checkExpect compares the outcome against the scenario's expect block.
func checkExpect(exp Expect, run store.Run, trace *engine.Trace, result *Result) {
	solved := run.Status == store.StatusSolved
	if *exp.Solved != solved {
		result.AddError(fmt.Sprintf("expected solved=%t, got %s (reason %q)", *exp.Solved, run.Status, run.Reason))
		return
	}

	if !solved {
		if exp.Reason != "" && exp.Reason != string(run.Reason) {
			result.AddError(fmt.Sprintf("expected reason %q, got %q", exp.Reason, run.Reason))
		}
		if exp.FinalIndex != nil && *exp.FinalIndex != run.FinalIndex {
			result.AddError(fmt.Sprintf("expected search to stop at index %d, got %d", *exp.FinalIndex, run.FinalIndex))
		}
		return
	}

	tol := exp.Tolerance
	if tol == 0 {
		tol = defaultTolerance
	}

	if exp.FinalIndex != nil && *exp.FinalIndex != trace.FinalIndex {
		result.AddError(fmt.Sprintf("expected final index %d, got %d", *exp.FinalIndex, trace.FinalIndex))
	}
	if exp.FinalValue != nil && !approxEqual(*exp.FinalValue, trace.FinalValue, tol) {
		result.AddError(fmt.Sprintf("expected final value %v, got %v", *exp.FinalValue, trace.FinalValue))
	}

	nodes := make([]string, 0, len(exp.Values))
	for n := range exp.Values {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	for _, n := range nodes {
		want := exp.Values[n]
		got, ok := trace.Values[n]
		if !ok {
			result.AddError(fmt.Sprintf("node %s: not resolved", n))
			continue
		}
		if len(got) < len(want) {
			result.AddError(fmt.Sprintf("node %s: expected at least %d values, got %d", n, len(want), len(got)))
			continue
		}
		for i, w := range want {
			if !approxEqual(w, got[i], tol) {
				result.AddError(fmt.Sprintf("node %s[%d]: expected %v, got %v", n, i, w, got[i]))
				break
			}
		}
	}
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
