package graph

import (
	"fmt"
	"sort"
)

// Registry owns the nodes and edges of one graph.
//
// Registration order is preserved and drives the order in which the
// resolver tries alternative edges. The registry is built once by the
// client and only read during solves, so concurrent solves over a fully
// built registry are safe.
type Registry struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []*Edge
	labels   map[string]*Edge
	byTarget map[string][]*Edge
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:    make(map[string]*Node),
		labels:   make(map[string]*Edge),
		byTarget: make(map[string][]*Edge),
	}
}

// AddNode registers a node. Duplicate names are rejected.
func (r *Registry) AddNode(name string, opts ...NodeOption) (*Node, error) {
	if name == "" {
		return nil, &Error{Code: ErrCodeUnknownNode, Message: "node name is required"}
	}
	if _, exists := r.nodes[name]; exists {
		return nil, &Error{
			Code:    ErrCodeDuplicateNode,
			Message: "node already registered",
			Node:    name,
		}
	}

	n := &Node{Name: name}
	for _, opt := range opts {
		opt(n)
	}

	r.nodes[name] = n
	r.order = append(r.order, n)
	return n, nil
}

// AddEdge registers an edge deriving target from inputs through rel.
//
// An empty label is generated from the relation name and the target.
// Without WithValidity the edge uses SameIndex().
func (r *Registry) AddEdge(label, target string, inputs []Input, rel Relation, opts ...EdgeOption) (*Edge, error) {
	e := &Edge{
		Label:    label,
		Target:   target,
		Inputs:   append([]Input(nil), inputs...),
		Relation: rel,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.Relation == nil {
		return nil, invalidEdge(e.Label, "relation is required")
	}
	if e.Label == "" {
		e.Label = r.generateLabel(e.Relation.Name(), target)
	}
	if e.Validity == nil {
		e.Validity = SameIndex()
	}

	if err := r.validateEdge(e); err != nil {
		return nil, err
	}

	e.seq = len(r.edges) + 1
	r.edges = append(r.edges, e)
	r.labels[e.Label] = e

	candidates := append(r.byTarget[target], e)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})
	r.byTarget[target] = candidates

	return e, nil
}

func (r *Registry) generateLabel(relName, target string) string {
	base := relName + "->" + target
	label := base
	for n := 2; r.labels[label] != nil; n++ {
		label = fmt.Sprintf("%s#%d", base, n)
	}
	return label
}

func (r *Registry) validateEdge(e *Edge) error {
	if _, exists := r.labels[e.Label]; exists {
		return &Error{
			Code:    ErrCodeDuplicateEdge,
			Message: "edge label already registered",
			Edge:    e.Label,
		}
	}
	if _, ok := r.nodes[e.Target]; !ok {
		return &Error{
			Code:    ErrCodeUnknownNode,
			Message: "edge target is not registered",
			Edge:    e.Label,
			Node:    e.Target,
		}
	}
	if e.Offset < 0 {
		return invalidEdge(e.Label, "negative offset %d", e.Offset)
	}

	names := make(map[string]Input, len(e.Inputs))
	dynamic := 0
	for _, in := range e.Inputs {
		if in.Name == "" {
			return invalidEdge(e.Label, "input name is required")
		}
		if _, dup := names[in.Name]; dup {
			return invalidEdge(e.Label, "duplicate input %q", in.Name)
		}
		names[in.Name] = in

		if in.Rule.Kind == RuleIndexOf {
			continue
		}
		if _, ok := r.nodes[in.Node]; !ok {
			return &Error{
				Code:    ErrCodeUnknownNode,
				Message: fmt.Sprintf("input %q is bound to an unregistered node", in.Name),
				Edge:    e.Label,
				Node:    in.Node,
			}
		}
		dynamic++
	}
	if dynamic == 0 {
		return invalidEdge(e.Label, "edge needs at least one node input")
	}

	for _, in := range e.Inputs {
		if in.Rule.Kind != RuleIndexOf {
			continue
		}
		other, ok := names[in.Rule.Of]
		if !ok || other.Rule.Kind == RuleIndexOf {
			return invalidEdge(e.Label, "input %q reads the index of %q, which is not a node input", in.Name, in.Rule.Of)
		}
	}

	for _, d := range e.Disposable {
		if _, ok := names[d]; !ok {
			return invalidEdge(e.Label, "disposable input %q is not bound", d)
		}
	}

	if p, ok := e.Relation.(Parameterized); ok {
		for _, param := range p.Params() {
			if _, bound := names[param]; !bound {
				return invalidEdge(e.Label, "relation %s needs input %q", e.Relation.Name(), param)
			}
		}
	}

	return nil
}

// Node returns the named node.
func (r *Registry) Node(name string) (*Node, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Nodes returns all nodes in registration order.
func (r *Registry) Nodes() []*Node {
	return append([]*Node(nil), r.order...)
}

// Edges returns all edges in registration order.
func (r *Registry) Edges() []*Edge {
	return append([]*Edge(nil), r.edges...)
}

// Edge returns the edge with the given label.
func (r *Registry) Edge(label string) (*Edge, bool) {
	e, ok := r.labels[label]
	return e, ok
}

// EdgesFor returns the candidate edges producing target, in the order the
// resolver tries them.
func (r *Registry) EdgesFor(target string) []*Edge {
	return append([]*Edge(nil), r.byTarget[target]...)
}

// HasEdges reports whether any edge produces target.
func (r *Registry) HasEdges(target string) bool {
	return len(r.byTarget[target]) > 0
}
