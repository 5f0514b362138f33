package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/chg/internal/graph"
)

// ErrNoSolution is matched (errors.Is) by every failed solve.
var ErrNoSolution = errors.New("no solution found")

// ErrorCode categorizes solve errors.
type ErrorCode string

const (
	// ErrCodeNoSolution indicates the search ended without satisfying the
	// termination condition.
	ErrCodeNoSolution ErrorCode = "NO_SOLUTION"

	// ErrCodeComputation indicates a relation failed for one attempt.
	ErrCodeComputation ErrorCode = "COMPUTATION_ERROR"

	// ErrCodeBudgetExhausted indicates the search used up its attempts.
	ErrCodeBudgetExhausted ErrorCode = "BUDGET_EXHAUSTED"

	// ErrCodeInvalidRequest indicates a malformed solve request.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Reason tells why a solve found no solution.
//
// Callers that only test errors.Is(err, ErrNoSolution) see a single
// outcome; Reason separates an exhausted budget from a graph that could not
// produce the next target index.
type Reason string

const (
	// ReasonBudgetExhausted: the search depth ran out.
	ReasonBudgetExhausted Reason = "budget_exhausted"

	// ReasonUnresolvable: every alternative for the next target index failed.
	ReasonUnresolvable Reason = "unresolvable"

	// ReasonIndexBound: the target passed MaxIndex without terminating.
	ReasonIndexBound Reason = "index_bound"
)

// NoSolutionError is returned when a solve ends without a trace.
type NoSolutionError struct {
	Reason Reason

	// Target is the requested node.
	Target string

	// Index is the target index the search was working on.
	Index int

	// Attempts is the number of firing attempts charged.
	Attempts int

	// Limit is the search depth in effect.
	Limit int

	// Failures are the computation errors observed during the search,
	// in the order they occurred.
	Failures []*ComputationError
}

// Error implements the error interface.
func (e *NoSolutionError) Error() string {
	msg := fmt.Sprintf("%s: %s for %s at index %d (%s, attempts=%d/%d)",
		ErrCodeNoSolution, ErrNoSolution.Error(), e.Target, e.Index, e.Reason, e.Attempts, e.Limit)
	if n := len(e.Failures); n > 0 {
		msg += fmt.Sprintf(", %d computation error(s), last: %v", n, e.Failures[n-1])
	}
	return msg
}

// Is matches ErrNoSolution.
func (e *NoSolutionError) Is(target error) bool {
	return target == ErrNoSolution
}

// Unwrap exposes the recorded computation errors to errors.As.
func (e *NoSolutionError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// ComputationError records a relation that failed for one firing attempt.
// It never aborts the search; the attempt counts as failed and the next
// alternative is tried.
type ComputationError struct {
	Edge   string
	Node   string
	Index  int
	Inputs graph.Args
	Err    error
}

// Error implements the error interface.
func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: edge %s producing %s[%d] with %s: %v",
		ErrCodeComputation, e.Edge, e.Node, e.Index, formatArgs(e.Inputs), e.Err)
}

// Unwrap returns the relation's error.
func (e *ComputationError) Unwrap() error {
	return e.Err
}

// RequestError reports a malformed solve request.
type RequestError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrCodeInvalidRequest, e.Field, e.Message)
}

// IsNoSolution reports whether err ended a solve without a trace.
func IsNoSolution(err error) bool {
	return errors.Is(err, ErrNoSolution)
}

// NoSolutionReason returns the Reason of a NoSolutionError, or "".
func NoSolutionReason(err error) Reason {
	var ns *NoSolutionError
	if errors.As(err, &ns) {
		return ns.Reason
	}
	return ""
}

// IsComputationError reports whether err is or carries a ComputationError.
func IsComputationError(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}

func formatArgs(args graph.Args) string {
	parts := make([]string, 0, len(args))
	for _, n := range args.Names() {
		parts = append(parts, fmt.Sprintf("%s=%v", n, args[n]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
