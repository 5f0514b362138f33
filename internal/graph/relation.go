package graph

import (
	"fmt"
	"sort"
)

// Args holds the resolved input values of one edge firing, keyed by input
// name.
type Args map[string]float64

// Float returns the named value. Edge registration guarantees that every
// parameter a relation declares is bound, so a missing name is a
// programming error in the relation and yields an error.
func (a Args) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, fmt.Errorf("input %q not bound", name)
	}
	return v, nil
}

// Names returns the bound names in sorted order.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Relation computes the value an edge deposits into its target.
//
// Evaluate must be deterministic: identical arguments always produce the
// identical result or error.
type Relation interface {
	Name() string
	Evaluate(args Args) (float64, error)
}

// Parameterized is implemented by relations that declare the input names
// they read. Registration rejects edges that leave one of them unbound.
type Parameterized interface {
	Params() []string
}

// Indices holds the realized index of every dynamic input of one candidate
// firing. Constant inputs are absent: they are valid at every index.
type Indices map[string]int

// Index returns the index of the named input, or false if the input is
// constant or unknown.
func (ix Indices) Index(name string) (int, bool) {
	i, ok := ix[name]
	return i, ok
}

// Max returns the greatest index, or false if there are no dynamic inputs.
func (ix Indices) Max() (int, bool) {
	found := false
	max := 0
	for _, i := range ix {
		if !found || i > max {
			max = i
			found = true
		}
	}
	return max, found
}
