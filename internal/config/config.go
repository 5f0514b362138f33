package config

import (
	"fmt"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/ir"
	"github.com/roach88/chg/internal/models"
)

// Solve is one solve configuration.
type Solve struct {
	Model       string             `json:"model" yaml:"model"`
	Target      string             `json:"target,omitempty" yaml:"target,omitempty"`
	Inputs      map[string]float64 `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	MinIndex    *int               `json:"min_index,omitempty" yaml:"min_index,omitempty"`
	MaxIndex    int                `json:"max_index,omitempty" yaml:"max_index,omitempty"`
	SearchDepth int                `json:"search_depth,omitempty" yaml:"search_depth,omitempty"`
	Termination Termination        `json:"termination,omitzero" yaml:"termination,omitempty"`
	Debug       Debug              `json:"debug,omitzero" yaml:"debug,omitempty"`
}

// Termination lists the conditions that end a solve. All set conditions
// must hold.
type Termination struct {
	IndexAtLeast *int     `json:"index_at_least,omitempty" yaml:"index_at_least,omitempty"`
	ValueAtLeast *float64 `json:"value_at_least,omitempty" yaml:"value_at_least,omitempty"`
	ValueAtMost  *float64 `json:"value_at_most,omitempty" yaml:"value_at_most,omitempty"`
}

// IsZero reports whether no condition is set.
func (t Termination) IsZero() bool {
	return t.IndexAtLeast == nil && t.ValueAtLeast == nil && t.ValueAtMost == nil
}

// Debug names what to log verbosely.
type Debug struct {
	Nodes []string `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges []string `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// IsZero reports whether nothing is watched.
func (d Debug) IsZero() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}

// Validate checks the constraints of the #Config schema for configurations
// that did not come through CUE.
func (s *Solve) Validate() error {
	if s.Model == "" {
		return &Error{Field: "model", Message: "model is required"}
	}
	if s.MinIndex != nil && *s.MinIndex < 0 {
		return &Error{Field: "min_index", Message: "must be >= 0"}
	}
	if s.MaxIndex < 0 {
		return &Error{Field: "max_index", Message: "must be >= 0"}
	}
	if s.SearchDepth < 0 {
		return &Error{Field: "search_depth", Message: "must be > 0"}
	}
	if t := s.Termination.IndexAtLeast; t != nil && *t < 0 {
		return &Error{Field: "termination.index_at_least", Message: "must be >= 0"}
	}
	return nil
}

// Plan is a configuration resolved against the model catalog.
type Plan struct {
	Model    models.Model
	Registry *graph.Registry
	Request  engine.Request
}

// Plan builds the model's registry and the engine request. Inputs are
// merged over the model defaults; an unset target or min_index takes the
// model's.
func (s *Solve) Plan() (*Plan, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m, err := models.Lookup(s.Model)
	if err != nil {
		return nil, &Error{Field: "model", Message: err.Error()}
	}
	reg, err := m.Build()
	if err != nil {
		return nil, err
	}

	seeds := m.Inputs()
	for k, v := range s.Inputs {
		seeds[k] = v
	}

	req := engine.Request{
		Target:      m.Target,
		Seeds:       seeds,
		MinIndex:    m.MinIndex,
		MaxIndex:    s.MaxIndex,
		SearchDepth: s.SearchDepth,
		Termination: s.termination(),
		DebugNodes:  s.Debug.Nodes,
		DebugEdges:  s.Debug.Edges,
	}
	if s.Target != "" {
		req.Target = s.Target
	}
	if s.MinIndex != nil {
		req.MinIndex = *s.MinIndex
	}
	if err := req.Validate(reg); err != nil {
		return nil, err
	}
	return &Plan{Model: m, Registry: reg, Request: req}, nil
}

func (s *Solve) termination() engine.Termination {
	var ts []engine.Termination
	if t := s.Termination.IndexAtLeast; t != nil {
		ts = append(ts, engine.IndexAtLeast(*t))
	}
	if t := s.Termination.ValueAtLeast; t != nil {
		ts = append(ts, engine.ValueAtLeast(*t))
	}
	if t := s.Termination.ValueAtMost; t != nil {
		ts = append(ts, engine.ValueAtMost(*t))
	}
	switch len(ts) {
	case 0:
		return nil
	case 1:
		return ts[0]
	default:
		return engine.AllOf(ts...)
	}
}

// Canonical returns the configuration as plain values for ir.ConfigHash.
// Unset fields are left out so equivalent configurations hash the same.
func (s *Solve) Canonical() map[string]any {
	out := map[string]any{"model": s.Model}
	if s.Target != "" {
		out["target"] = s.Target
	}
	if len(s.Inputs) > 0 {
		inputs := make(map[string]any, len(s.Inputs))
		for k, v := range s.Inputs {
			inputs[k] = v
		}
		out["inputs"] = inputs
	}
	if s.MinIndex != nil {
		out["min_index"] = *s.MinIndex
	}
	if s.MaxIndex > 0 {
		out["max_index"] = s.MaxIndex
	}
	if s.SearchDepth > 0 {
		out["search_depth"] = s.SearchDepth
	}
	if !s.Termination.IsZero() {
		t := map[string]any{}
		if v := s.Termination.IndexAtLeast; v != nil {
			t["index_at_least"] = *v
		}
		if v := s.Termination.ValueAtLeast; v != nil {
			t["value_at_least"] = *v
		}
		if v := s.Termination.ValueAtMost; v != nil {
			t["value_at_most"] = *v
		}
		out["termination"] = t
	}
	// Debug settings never change a result and are not hashed.
	return out
}

// Hash returns the content hash of the configuration.
func (s *Solve) Hash() (string, error) {
	return ir.ConfigHash(s.Canonical())
}

// Error reports an invalid configuration field.
type Error struct {
	Field   string
	Message string
	Pos     string // file:line:col when known
}

func (e *Error) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
