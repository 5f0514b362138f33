package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Validity decides whether an edge may fire for a candidate combination of
// input indices. It sees indices only, never values, and must be
// deterministic.
type Validity interface {
	Valid(ix Indices) bool
	String() string
}

// SameIndex requires the named dynamic inputs to share one index. With no
// names it covers every dynamic input; this is the default validity of an
// edge. Constant inputs always pass.
func SameIndex(names ...string) Validity {
	return sameIndex{names: names}
}

type sameIndex struct {
	names []string
}

func (v sameIndex) Valid(ix Indices) bool {
	first, seen := 0, false
	check := func(i int) bool {
		if !seen {
			first, seen = i, true
			return true
		}
		return i == first
	}

	if len(v.names) == 0 {
		for _, i := range ix {
			if !check(i) {
				return false
			}
		}
		return true
	}
	for _, n := range v.names {
		i, ok := ix[n]
		if !ok {
			continue
		}
		if !check(i) {
			return false
		}
	}
	return true
}

func (v sameIndex) String() string {
	if len(v.names) == 0 {
		return "same_index(*)"
	}
	return "same_index(" + strings.Join(v.names, ",") + ")"
}

// OneApart requires next to sit exactly one index after prev, the alignment
// of finite differences and semi-implicit integration. A constant operand
// passes.
func OneApart(prev, next string) Validity {
	return oneApart{prev: prev, next: next}
}

type oneApart struct {
	prev, next string
}

func (v oneApart) Valid(ix Indices) bool {
	p, okP := ix[v.prev]
	n, okN := ix[v.next]
	if !okP || !okN {
		return true
	}
	return n == p+1
}

func (v oneApart) String() string {
	return fmt.Sprintf("one_apart(%s,%s)", v.prev, v.next)
}

// Always accepts every combination.
func Always() Validity {
	return always{}
}

type always struct{}

func (always) Valid(Indices) bool { return true }
func (always) String() string     { return "always" }

// AtLeast requires the named input to sit at index k or later.
func AtLeast(name string, k int) Validity {
	return atLeast{name: name, k: k}
}

type atLeast struct {
	name string
	k    int
}

func (v atLeast) Valid(ix Indices) bool {
	i, ok := ix[v.name]
	if !ok {
		return true
	}
	return i >= v.k
}

func (v atLeast) String() string {
	return fmt.Sprintf("at_least(%s,%d)", v.name, v.k)
}

// AllOf requires every given validity to hold.
func AllOf(vs ...Validity) Validity {
	return allOf(vs)
}

type allOf []Validity

func (vs allOf) Valid(ix Indices) bool {
	for _, v := range vs {
		if !v.Valid(ix) {
			return false
		}
	}
	return true
}

func (vs allOf) String() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "all_of(" + strings.Join(parts, ",") + ")"
}

// Never rejects every combination. Useful to disable an alternative edge
// without removing it.
func Never() Validity {
	return never{}
}

type never struct{}

func (never) Valid(Indices) bool { return false }
func (never) String() string     { return "never" }

// FormatIndices renders indices in name order for logs.
func FormatIndices(ix Indices) string {
	names := make([]string, 0, len(ix))
	for n := range ix {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s@%d", n, ix[n])
	}
	return strings.Join(parts, " ")
}
