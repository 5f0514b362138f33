package graph

import (
	"fmt"
	"math"
	"sort"
)

// Series is the resolved history of one dynamic node: a sparse mapping from
// non-negative index to value.
//
// Values are write-once. Writing the same value again is a no-op; writing a
// different value at a resolved index fails with DUPLICATE_INDEX_WRITE.
//
// Series is not safe for concurrent use. A solve owns its series exclusively.
type Series struct {
	node   string
	values map[int]float64
	latest int
	empty  bool
}

// NewSeries creates an empty history for the named node.
func NewSeries(node string) *Series {
	return &Series{
		node:   node,
		values: make(map[int]float64),
		latest: -1,
		empty:  true,
	}
}

// Get returns the value at index, or ErrNotYetResolved.
func (s *Series) Get(index int) (float64, error) {
	v, ok := s.values[index]
	if !ok {
		return 0, fmt.Errorf("%s[%d]: %w", s.node, index, ErrNotYetResolved)
	}
	return v, nil
}

// Has reports whether index holds a value.
func (s *Series) Has(index int) bool {
	_, ok := s.values[index]
	return ok
}

// Set stores v at index.
//
// Values are compared bit for bit, so an identical rewrite (including NaN
// with the same payload) is accepted.
func (s *Series) Set(index int, v float64) error {
	if index < 0 {
		return &Error{
			Code:    ErrCodeInvalidIndex,
			Message: fmt.Sprintf("negative index %d", index),
			Node:    s.node,
			Index:   index,
		}
	}
	if old, ok := s.values[index]; ok {
		if math.Float64bits(old) == math.Float64bits(v) {
			return nil
		}
		return &Error{
			Code:    ErrCodeDuplicateIndex,
			Message: fmt.Sprintf("index %d already holds %v, refusing %v", index, old, v),
			Node:    s.node,
			Index:   index,
		}
	}
	s.values[index] = v
	if s.empty || index > s.latest {
		s.latest = index
	}
	s.empty = false
	return nil
}

// Latest returns the greatest resolved index, or false if the series is empty.
func (s *Series) Latest() (int, bool) {
	if s.empty {
		return 0, false
	}
	return s.latest, true
}

// Len returns the number of resolved indices.
func (s *Series) Len() int {
	return len(s.values)
}

// Snapshot returns an immutable copy ordered by increasing index.
func (s *Series) Snapshot() Snapshot {
	indices := make([]int, 0, len(s.values))
	for i := range s.values {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for k, i := range indices {
		values[k] = s.values[i]
	}
	return Snapshot{Node: s.node, Indices: indices, Values: values}
}

// Snapshot is an ordered, read-only view of a Series.
type Snapshot struct {
	Node    string    `json:"node"`
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// Contiguous reports whether the indices run 0, 1, 2, ... without gaps.
func (s Snapshot) Contiguous() bool {
	for k, i := range s.Indices {
		if i != k {
			return false
		}
	}
	return true
}
