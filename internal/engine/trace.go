package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/ir"
)

// Ref names one resolved value: a node at an index, or a constant.
type Ref struct {
	Node     string `json:"node"`
	Index    int    `json:"index"`
	Constant bool   `json:"constant,omitempty"`
}

func (r Ref) String() string {
	if r.Constant {
		return r.Node
	}
	return fmt.Sprintf("%s[%d]", r.Node, r.Index)
}

// Step is one edge firing on the critical path to the target.
type Step struct {
	Seq      int64   `json:"seq"`
	Edge     string  `json:"edge"`
	Node     string  `json:"node"`
	Index    int     `json:"index"`
	Constant bool    `json:"constant,omitempty"`
	Value    float64 `json:"value"`
	Inputs   []Ref   `json:"inputs"`
}

// Stats summarizes the search effort of a solve.
type Stats struct {
	Attempts          int `json:"attempts"`
	Produced          int `json:"produced"`
	Invalid           int `json:"invalid"`
	Unresolved        int `json:"unresolved"`
	ComputationErrors int `json:"computation_errors"`
	MemoHits          int `json:"memo_hits"`
	Cycles            int `json:"cycles"`
	MaxStack          int `json:"max_stack"`
	Limit             int `json:"limit"`
}

// Failure is the reportable form of a ComputationError.
type Failure struct {
	Edge    string             `json:"edge"`
	Node    string             `json:"node"`
	Index   int                `json:"index"`
	Inputs  map[string]float64 `json:"inputs"`
	Message string             `json:"message"`
}

// Trace is the result of a successful solve. Read-only.
type Trace struct {
	Target      string  `json:"target"`
	FinalIndex  int     `json:"final_index"`
	FinalValue  float64 `json:"final_value"`
	Termination string  `json:"termination"`

	// Values holds every resolved node's values by increasing index.
	// Constants hold a single element.
	Values map[string][]float64 `json:"values"`

	// Series holds dynamic node histories with explicit indices.
	Series map[string]graph.Snapshot `json:"series"`

	// Constants holds constant node values.
	Constants map[string]float64 `json:"constants"`

	// Path is the chain of firings the final target value depends on,
	// in production order.
	Path []Step `json:"path"`

	// Transient lists nodes that are only ever consumed as disposable inputs.
	Transient []string `json:"transient,omitempty"`

	Stats    Stats     `json:"stats"`
	Failures []Failure `json:"failures,omitempty"`
}

// Nodes returns the names of all resolved nodes in sorted order.
func (t *Trace) Nodes() []string {
	names := make([]string, 0, len(t.Values))
	for n := range t.Values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pruned returns a copy of the trace without transient nodes.
func (t *Trace) Pruned() *Trace {
	if len(t.Transient) == 0 {
		return t
	}
	drop := make(map[string]bool, len(t.Transient))
	for _, n := range t.Transient {
		drop[n] = true
	}

	out := *t
	out.Values = make(map[string][]float64, len(t.Values))
	for n, v := range t.Values {
		if !drop[n] {
			out.Values[n] = v
		}
	}
	out.Series = make(map[string]graph.Snapshot, len(t.Series))
	for n, s := range t.Series {
		if !drop[n] {
			out.Series[n] = s
		}
	}
	out.Constants = make(map[string]float64, len(t.Constants))
	for n, v := range t.Constants {
		if !drop[n] {
			out.Constants[n] = v
		}
	}
	return &out
}

// Canonical returns the determinism-relevant content of the trace as a
// plain map for canonical JSON: target, final index and value, all values
// and the critical path. Stats and failures are excluded.
func (t *Trace) Canonical() map[string]any {
	values := make(map[string]any, len(t.Values))
	for n, vs := range t.Values {
		arr := make([]any, len(vs))
		for i, v := range vs {
			arr[i] = v
		}
		values[n] = arr
	}

	path := make([]any, len(t.Path))
	for i, s := range t.Path {
		inputs := make([]any, len(s.Inputs))
		for k, in := range s.Inputs {
			inputs[k] = in.String()
		}
		path[i] = map[string]any{
			"seq":    s.Seq,
			"edge":   s.Edge,
			"node":   s.Node,
			"index":  s.Index,
			"value":  s.Value,
			"inputs": inputs,
		}
	}

	return map[string]any{
		"target":      t.Target,
		"final_index": t.FinalIndex,
		"final_value": t.FinalValue,
		"values":      values,
		"path":        path,
	}
}

// Hash returns the content hash of Canonical. Identical solves produce
// identical hashes.
func (t *Trace) Hash() (string, error) {
	data, err := ir.MarshalCanonical(t.Canonical())
	if err != nil {
		return "", fmt.Errorf("trace hash: %w", err)
	}
	return ir.TraceHash(data), nil
}

// String renders a one-line summary.
func (t *Trace) String() string {
	return fmt.Sprintf("%s[%d]=%v (%d nodes, %d steps, %d attempts)",
		t.Target, t.FinalIndex, t.FinalValue, len(t.Values), len(t.Path), t.Stats.Attempts)
}

// buildTrace assembles the trace of a successful solve.
func buildTrace(reg *graph.Registry, m *memo, target string, index int, value float64, term Termination, stats Stats, failures []*ComputationError) *Trace {
	t := &Trace{
		Target:      target,
		FinalIndex:  index,
		FinalValue:  value,
		Termination: term.String(),
		Values:      make(map[string][]float64),
		Series:      make(map[string]graph.Snapshot),
		Constants:   make(map[string]float64),
		Stats:       stats,
	}

	for n, v := range m.constants {
		t.Constants[n] = v
		t.Values[n] = []float64{v}
	}
	for n, s := range m.series {
		if s.Len() == 0 {
			continue
		}
		snap := s.Snapshot()
		t.Series[n] = snap
		t.Values[n] = snap.Values
	}

	root := Ref{Node: target, Index: index, Constant: m.IsConstant(target)}
	t.Path = criticalPath(m, root)
	t.Transient = transientNodes(reg, target)

	for _, f := range failures {
		t.Failures = append(t.Failures, failureOf(f))
	}
	return t
}

// criticalPath walks provenance back from root and returns every edge
// firing reached, ordered by production sequence.
func criticalPath(m *memo, root Ref) []Step {
	seen := make(map[Ref]bool)
	var steps []Step

	stack := []Ref{root}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[r] {
			continue
		}
		seen[r] = true

		o, ok := m.Origin(r)
		if !ok || o.edge == "" {
			continue
		}
		v, _ := m.Lookup(r.Node, r.Index)
		steps = append(steps, Step{
			Seq:      o.seq,
			Edge:     o.edge,
			Node:     r.Node,
			Index:    r.Index,
			Constant: r.Constant,
			Value:    v,
			Inputs:   o.inputs,
		})
		stack = append(stack, o.inputs...)
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].Seq < steps[j].Seq })
	return steps
}

// transientNodes returns the nodes (other than target) that appear as edge
// inputs and are disposable in every edge that reads them.
func transientNodes(reg *graph.Registry, target string) []string {
	reads := make(map[string]bool) // node -> every read disposable so far
	for _, e := range reg.Edges() {
		for _, in := range e.Inputs {
			if in.Node == "" {
				continue
			}
			disposable := e.IsDisposable(in.Name)
			if prev, ok := reads[in.Node]; ok {
				reads[in.Node] = prev && disposable
			} else {
				reads[in.Node] = disposable
			}
		}
	}

	var out []string
	for n, all := range reads {
		if all && n != target {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func failureOf(ce *ComputationError) Failure {
	inputs := make(map[string]float64, len(ce.Inputs))
	for k, v := range ce.Inputs {
		inputs[k] = v
	}
	return Failure{
		Edge:    ce.Edge,
		Node:    ce.Node,
		Index:   ce.Index,
		Inputs:  inputs,
		Message: ce.Err.Error(),
	}
}
