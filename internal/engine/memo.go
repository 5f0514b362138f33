package engine

import (
	"github.com/roach88/chg/internal/graph"
)

// origin is the provenance of one memoized value.
type origin struct {
	seq    int64
	edge   string // empty for seeds and declared constants
	inputs []Ref
}

// memo holds every value resolved during one solve.
//
// Constants (declared, parameter seeds, and values derived by an
// offset-0 edge from constants only) answer every index. Dynamic nodes
// keep a write-once graph.Series.
type memo struct {
	constants map[string]float64
	series    map[string]*graph.Series
	origins   map[ref]origin
}

// constIndex is the origin key index used for constant values.
const constIndex = -1

func newMemo() *memo {
	return &memo{
		constants: make(map[string]float64),
		series:    make(map[string]*graph.Series),
		origins:   make(map[ref]origin),
	}
}

// Lookup returns the value of node at index if it has been resolved.
func (m *memo) Lookup(node string, index int) (float64, bool) {
	if v, ok := m.constants[node]; ok {
		return v, true
	}
	s, ok := m.series[node]
	if !ok || !s.Has(index) {
		return 0, false
	}
	v, _ := s.Get(index)
	return v, true
}

// IsConstant reports whether node resolved to a constant.
func (m *memo) IsConstant(node string) bool {
	_, ok := m.constants[node]
	return ok
}

// SetConstant stores a constant value.
func (m *memo) SetConstant(node string, v float64, o origin) {
	m.constants[node] = v
	m.origins[ref{node, constIndex}] = o
}

// Set stores a dynamic value. A conflicting rewrite is a fatal
// DUPLICATE_INDEX_WRITE.
func (m *memo) Set(node string, index int, v float64, o origin) error {
	s, ok := m.series[node]
	if !ok {
		s = graph.NewSeries(node)
		m.series[node] = s
	}
	if err := s.Set(index, v); err != nil {
		return err
	}
	if _, exists := m.origins[ref{node, index}]; !exists {
		m.origins[ref{node, index}] = o
	}
	return nil
}

// Series returns the history of a dynamic node, or nil.
func (m *memo) Series(node string) *graph.Series {
	return m.series[node]
}

// Origin returns the provenance of a resolved value.
func (m *memo) Origin(r Ref) (origin, bool) {
	idx := r.Index
	if r.Constant {
		idx = constIndex
	}
	o, ok := m.origins[ref{r.Node, idx}]
	return o, ok
}
