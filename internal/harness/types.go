package harness

import (
	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace is the solve's trace, nil when no solution was found.
	Trace *engine.Trace `json:"trace,omitempty"`

	// Run is the run as written to the scenario's store.
	Run store.Run `json:"-"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
