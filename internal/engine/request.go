package engine

import (
	"sort"

	"github.com/roach88/chg/internal/graph"
)

// Request describes one solve.
type Request struct {
	// Target is the node whose history the solve extends.
	Target string

	// Seeds are initial values. A seeded node that some edge produces gets
	// the seed at index 0; a seeded node nothing produces is a constant
	// parameter, as is a node registered with graph.WithValue (the seed then
	// overrides the registered value).
	Seeds map[string]float64

	// MinIndex is the lowest target index the termination condition may end
	// the solve at.
	MinIndex int

	// MaxIndex, when positive, is the highest target index the search
	// extends to before giving up with ReasonIndexBound.
	MaxIndex int

	// SearchDepth caps firing attempts. Zero uses the resolver default.
	SearchDepth int

	// Termination ends the solve. Nil means IndexAtLeast(MinIndex).
	Termination Termination

	// DebugNodes and DebugEdges name nodes and edge labels whose attempts
	// are logged at Info instead of Debug. Observability only.
	DebugNodes []string
	DebugEdges []string
}

// Validate checks the request against the registry.
func (req Request) Validate(reg *graph.Registry) error {
	if req.Target == "" {
		return &RequestError{Field: "target", Message: "target node is required"}
	}
	if _, ok := reg.Node(req.Target); !ok {
		return &RequestError{Field: "target", Message: "unknown node " + req.Target}
	}
	if req.MinIndex < 0 {
		return &RequestError{Field: "min_index", Message: "must not be negative"}
	}
	if req.MaxIndex < 0 {
		return &RequestError{Field: "max_index", Message: "must not be negative"}
	}
	if req.MaxIndex > 0 && req.MaxIndex < req.MinIndex {
		return &RequestError{Field: "max_index", Message: "must not be below min_index"}
	}
	if req.SearchDepth < 0 {
		return &RequestError{Field: "search_depth", Message: "must not be negative"}
	}
	for _, name := range sortedSeedNames(req.Seeds) {
		if _, ok := reg.Node(name); !ok {
			return &RequestError{Field: "seeds", Message: "unknown node " + name}
		}
	}
	return nil
}

func (req Request) termination() Termination {
	if req.Termination != nil {
		return req.Termination
	}
	return IndexAtLeast(req.MinIndex)
}

func sortedSeedNames(seeds map[string]float64) []string {
	names := make([]string, 0, len(seeds))
	for n := range seeds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
