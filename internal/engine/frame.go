package engine

import (
	"github.com/roach88/chg/internal/graph"
)

// pick is the index one input is read at within a candidate combination.
type pick struct {
	input    graph.Input
	index    int
	constant bool
}

func (p pick) ref() Ref {
	if p.constant {
		return Ref{Node: p.input.Node, Constant: true}
	}
	return Ref{Node: p.input.Node, Index: p.index}
}

// combo is one candidate index combination for an edge firing.
type combo struct {
	picks   []pick
	indices graph.Indices

	// constant is set when every node input is constant and the offset is
	// zero: the output is then valid at every index.
	constant bool
}

func (c *combo) refs() []Ref {
	refs := make([]Ref, len(c.picks))
	for i, p := range c.picks {
		refs[i] = p.ref()
	}
	return refs
}

// result is what a finished frame hands to its parent.
type result struct {
	value float64
	ok    bool
}

// frame is one pending resolution of node at index.
//
// The frame walks its candidate edges in order (ei), the candidate
// combinations of the current edge (ci), and the inputs of the current
// combination (next). It is finished once it has produced a value or run
// out of combinations.
type frame struct {
	node  string
	index int

	edges  []*graph.Edge
	ei     int
	loaded bool
	combos []combo
	ci     int

	cur  *combo
	args graph.Args
	next int

	result result
}

func (f *frame) edge() *graph.Edge {
	return f.edges[f.ei]
}

// nextCombo advances to the next candidate combination, moving on to the
// next edge when the current one is exhausted.
func (f *frame) nextCombo(combos func(*graph.Edge, int) []combo) (*combo, bool) {
	for f.ei < len(f.edges) {
		if !f.loaded {
			f.combos = combos(f.edges[f.ei], f.index)
			f.ci = 0
			f.loaded = true
		}
		if f.ci < len(f.combos) {
			c := &f.combos[f.ci]
			f.ci++
			return c, true
		}
		f.ei++
		f.loaded = false
		f.combos = nil
	}
	return nil, false
}

// begin starts resolving the inputs of c.
func (f *frame) begin(c *combo) {
	f.cur = c
	f.next = 0
	f.args = make(graph.Args, len(c.picks))
}

// abandon drops the current combination.
func (f *frame) abandon() {
	f.cur = nil
	f.args = nil
	f.next = 0
}
