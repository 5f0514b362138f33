package graph

import "fmt"

// RuleKind enumerates the ways an edge input selects the index it reads.
type RuleKind int

const (
	// RuleShift reads the input at the firing index plus Shift.
	// Shift 0 is the common "same index" case.
	RuleShift RuleKind = iota

	// RuleLatest reads the latest available index: the firing index if it
	// can be resolved, otherwise one below it.
	RuleLatest

	// RuleIndexOf binds no node. Its value is the realized index of the
	// input named in Of, so relations can inspect alignment explicitly.
	RuleIndexOf
)

func (k RuleKind) String() string {
	switch k {
	case RuleShift:
		return "shift"
	case RuleLatest:
		return "latest"
	case RuleIndexOf:
		return "index_of"
	default:
		return "unknown"
	}
}

// IndexRule selects the index an input is read at, relative to the firing
// index of its edge (the edge's output index minus its offset).
type IndexRule struct {
	Kind  RuleKind `json:"kind"`
	Shift int      `json:"shift,omitempty"`
	Of    string   `json:"of,omitempty"`
}

// Same reads the input at the firing index.
func Same() IndexRule {
	return IndexRule{Kind: RuleShift}
}

// Shift reads the input k indices away from the firing index (k = -1 reads
// the previous value).
func Shift(k int) IndexRule {
	return IndexRule{Kind: RuleShift, Shift: k}
}

// Latest reads the input at the latest available index.
func Latest() IndexRule {
	return IndexRule{Kind: RuleLatest}
}

// IndexOf binds the realized index of another input as a value.
func IndexOf(input string) IndexRule {
	return IndexRule{Kind: RuleIndexOf, Of: input}
}

// Candidates returns the indices this rule may read for the given firing
// index, most preferred first. Negative indices are never returned.
// RuleIndexOf has no candidates of its own.
func (r IndexRule) Candidates(base int) []int {
	switch r.Kind {
	case RuleShift:
		if i := base + r.Shift; i >= 0 {
			return []int{i}
		}
		return nil
	case RuleLatest:
		switch {
		case base > 0:
			return []int{base, base - 1}
		case base == 0:
			return []int{0}
		}
		return nil
	default:
		return nil
	}
}

func (r IndexRule) String() string {
	switch r.Kind {
	case RuleShift:
		if r.Shift == 0 {
			return "same"
		}
		return fmt.Sprintf("shift(%+d)", r.Shift)
	case RuleIndexOf:
		return fmt.Sprintf("index_of(%s)", r.Of)
	default:
		return r.Kind.String()
	}
}

// Input is one labeled binding of an edge.
type Input struct {
	// Name is the label the relation reads the value under.
	Name string `json:"name"`

	// Node is the bound node. Empty for RuleIndexOf bindings.
	Node string `json:"node,omitempty"`

	Rule IndexRule `json:"rule"`
}

// Bind binds node under name at the firing index.
func Bind(name, node string) Input {
	return Input{Name: name, Node: node, Rule: Same()}
}

// BindAt binds node under name with an explicit index rule.
func BindAt(name, node string, rule IndexRule) Input {
	return Input{Name: name, Node: node, Rule: rule}
}

// BindIndex binds the realized index of input other under name.
func BindIndex(name, other string) Input {
	return Input{Name: name, Rule: IndexOf(other)}
}
