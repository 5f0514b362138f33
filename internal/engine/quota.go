package engine

import (
	"errors"
	"fmt"
)

// DefaultSearchDepth is the attempt budget used when a request leaves
// SearchDepth at zero.
const DefaultSearchDepth = 1000

// Budget counts edge-firing attempts within one solve and enforces the
// search depth.
//
// Every candidate index combination an edge is tried with counts as one
// attempt, whether it ends Produced, Invalid, InputsUnresolved or
// ComputationFailed. The budget is the only deadline of a solve: exhausting
// it always ends the solve with ReasonBudgetExhausted.
type Budget struct {
	limit   int
	current int
}

// NewBudget creates a budget allowing limit attempts.
func NewBudget(limit int) *Budget {
	return &Budget{limit: limit}
}

// Check charges one attempt for producing node at index.
//
// Returns BudgetExhaustedError once more than limit attempts were charged.
func (b *Budget) Check(node string, index int) error {
	b.current++
	if b.current > b.limit {
		return &BudgetExhaustedError{
			Node:     node,
			Index:    index,
			Attempts: b.current,
			Limit:    b.limit,
		}
	}
	return nil
}

// Used returns the number of attempts charged so far, capped at the limit.
func (b *Budget) Used() int {
	if b.current > b.limit {
		return b.limit
	}
	return b.current
}

// Limit returns the configured search depth.
func (b *Budget) Limit() int {
	return b.limit
}

// Remaining returns the attempts left.
func (b *Budget) Remaining() int {
	if b.current >= b.limit {
		return 0
	}
	return b.limit - b.current
}

// BudgetExhaustedError is returned by Budget.Check when the search depth is
// used up. The resolver converts it into a NoSolutionError.
type BudgetExhaustedError struct {
	Node     string // node being produced when the budget ran out
	Index    int
	Attempts int
	Limit    int
}

// Error implements the error interface.
func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("%s: search depth exhausted producing %s[%d]: %d attempts > %d limit",
		ErrCodeBudgetExhausted, e.Node, e.Index, e.Attempts, e.Limit)
}

// IsBudgetExhausted reports whether err is a BudgetExhaustedError or a
// NoSolutionError caused by one.
func IsBudgetExhausted(err error) bool {
	var be *BudgetExhaustedError
	if errors.As(err, &be) {
		return true
	}
	return NoSolutionReason(err) == ReasonBudgetExhausted
}
