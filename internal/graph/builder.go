package graph

// Builder registers nodes and edges into a Registry and keeps the first
// error, so model definitions read as a flat list of declarations.
//
//	b := graph.NewBuilder()
//	b.Node("time", graph.WithUnits("s"))
//	b.Node("step", graph.WithUnits("s"))
//	b.Edge("advance_time", "time", []graph.Input{...}, relations.Sum{}, graph.WithOffset(1))
//	reg, err := b.Build()
type Builder struct {
	reg *Registry
	err error
}

// NewBuilder creates a builder over an empty registry.
func NewBuilder() *Builder {
	return &Builder{reg: NewRegistry()}
}

// Node registers a node unless an earlier declaration failed.
func (b *Builder) Node(name string, opts ...NodeOption) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.reg.AddNode(name, opts...)
	return b
}

// Edge registers an edge unless an earlier declaration failed.
func (b *Builder) Edge(label, target string, inputs []Input, rel Relation, opts ...EdgeOption) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.reg.AddEdge(label, target, inputs, rel, opts...)
	return b
}

// Build returns the registry, or the first registration error.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.reg, nil
}
