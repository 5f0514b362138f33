package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passThrough returns its "in" input.
type passThrough struct{}

func (passThrough) Name() string                     { return "pass" }
func (passThrough) Params() []string                 { return []string{"in"} }
func (passThrough) Evaluate(a Args) (float64, error) { return a.Float("in") }

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, n := range names {
		_, err := r.AddNode(n)
		require.NoError(t, err)
	}
	return r
}

func TestRegistry_AddNode(t *testing.T) {
	r := NewRegistry()

	n, err := r.AddNode("g", WithValue(9.81), WithUnits("m/s^2"), WithDescription("gravity"))
	require.NoError(t, err)
	assert.Equal(t, "g", n.Name)
	assert.Equal(t, "m/s^2", n.Units)
	assert.Equal(t, "gravity", n.Description)

	v, ok := n.Constant()
	assert.True(t, ok)
	assert.Equal(t, 9.81, v)

	got, ok := r.Node("g")
	require.True(t, ok)
	assert.Same(t, n, got)
}

func TestRegistry_DynamicNode(t *testing.T) {
	r := newTestRegistry(t, "theta")
	n, _ := r.Node("theta")

	_, ok := n.Constant()
	assert.False(t, ok)
}

func TestRegistry_DuplicateNode(t *testing.T) {
	r := newTestRegistry(t, "theta")

	_, err := r.AddNode("theta")
	require.Error(t, err)
	assert.True(t, IsDuplicateNode(err))
}

func TestRegistry_EmptyNodeName(t *testing.T) {
	_, err := NewRegistry().AddNode("")
	assert.Error(t, err)
}

func TestRegistry_NodesInOrder(t *testing.T) {
	r := newTestRegistry(t, "c", "a", "b")

	var names []string
	for _, n := range r.Nodes() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestRegistry_AddEdge(t *testing.T) {
	r := newTestRegistry(t, "x", "y")

	e, err := r.AddEdge("copy", "y", []Input{Bind("in", "x")}, passThrough{},
		WithOffset(1), WithDisposable("in"))
	require.NoError(t, err)

	assert.Equal(t, "copy", e.Label)
	assert.Equal(t, "y", e.Target)
	assert.Equal(t, 1, e.Offset)
	assert.Equal(t, 1, e.Seq())
	assert.True(t, e.IsDisposable("in"))
	assert.Equal(t, "same_index(*)", e.Validity.String(), "default validity")

	in, ok := e.Input("in")
	require.True(t, ok)
	assert.Equal(t, "x", in.Node)

	got, ok := r.Edge("copy")
	require.True(t, ok)
	assert.Same(t, e, got)
	assert.True(t, r.HasEdges("y"))
	assert.False(t, r.HasEdges("x"))
}

func TestRegistry_GeneratedLabels(t *testing.T) {
	r := newTestRegistry(t, "x", "y")

	e1, err := r.AddEdge("", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)
	e2, err := r.AddEdge("", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)

	assert.Equal(t, "pass->y", e1.Label)
	assert.Equal(t, "pass->y#2", e2.Label)
}

func TestRegistry_EdgesForOrder(t *testing.T) {
	r := newTestRegistry(t, "x", "y")

	_, err := r.AddEdge("first", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)
	_, err = r.AddEdge("second", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)
	_, err = r.AddEdge("preferred", "y", []Input{Bind("in", "x")}, passThrough{}, WithPriority(-1))
	require.NoError(t, err)
	_, err = r.AddEdge("third", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)

	var labels []string
	for _, e := range r.EdgesFor("y") {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"preferred", "first", "second", "third"}, labels)

	var all []string
	for _, e := range r.Edges() {
		all = append(all, e.Label)
	}
	assert.Equal(t, []string{"first", "second", "preferred", "third"}, all)
}

func TestRegistry_EdgeValidation(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		target string
		inputs []Input
		rel    Relation
		opts   []EdgeOption
		code   ErrorCode
	}{
		{"unknown target", "e", "nope", []Input{Bind("in", "x")}, passThrough{}, nil, ErrCodeUnknownNode},
		{"unknown input node", "e", "y", []Input{Bind("in", "nope")}, passThrough{}, nil, ErrCodeUnknownNode},
		{"nil relation", "e", "y", []Input{Bind("in", "x")}, nil, nil, ErrCodeInvalidEdge},
		{"no inputs", "e", "y", nil, passThrough{}, nil, ErrCodeInvalidEdge},
		{"negative offset", "e", "y", []Input{Bind("in", "x")}, passThrough{}, []EdgeOption{WithOffset(-1)}, ErrCodeInvalidEdge},
		{"duplicate input", "e", "y", []Input{Bind("in", "x"), Bind("in", "y")}, passThrough{}, nil, ErrCodeInvalidEdge},
		{"empty input name", "e", "y", []Input{Bind("", "x")}, passThrough{}, nil, ErrCodeInvalidEdge},
		{"missing param", "e", "y", []Input{Bind("other", "x")}, passThrough{}, nil, ErrCodeInvalidEdge},
		{"bad disposable", "e", "y", []Input{Bind("in", "x")}, passThrough{}, []EdgeOption{WithDisposable("zz")}, ErrCodeInvalidEdge},
		{"index of unknown", "e", "y", []Input{Bind("in", "x"), BindIndex("i", "zz")}, passThrough{}, nil, ErrCodeInvalidEdge},
		{"index of index", "e", "y", []Input{Bind("in", "x"), BindIndex("i", "in"), BindIndex("j", "i")}, passThrough{}, nil, ErrCodeInvalidEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, "x", "y")
			_, err := r.AddEdge(tt.label, tt.target, tt.inputs, tt.rel, tt.opts...)
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, r.Edges(), "rejected edge must not be registered")
		})
	}
}

func TestRegistry_DuplicateEdgeLabel(t *testing.T) {
	r := newTestRegistry(t, "x", "y")

	_, err := r.AddEdge("copy", "y", []Input{Bind("in", "x")}, passThrough{})
	require.NoError(t, err)
	_, err = r.AddEdge("copy", "x", []Input{Bind("in", "y")}, passThrough{})
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrCodeDuplicateEdge))
}

func TestRegistry_IndexOfBinding(t *testing.T) {
	r := newTestRegistry(t, "x", "y")

	e, err := r.AddEdge("copy", "y", []Input{Bind("in", "x"), BindIndex("in_i", "in")}, passThrough{})
	require.NoError(t, err)

	in, ok := e.Input("in_i")
	require.True(t, ok)
	assert.Equal(t, RuleIndexOf, in.Rule.Kind)
	assert.Equal(t, "in", in.Rule.Of)
}

func TestBuilder(t *testing.T) {
	reg, err := NewBuilder().
		Node("x").
		Node("y").
		Edge("copy", "y", []Input{Bind("in", "x")}, passThrough{}).
		Build()
	require.NoError(t, err)
	assert.Len(t, reg.Nodes(), 2)
	assert.Len(t, reg.Edges(), 1)
}

func TestBuilder_KeepsFirstError(t *testing.T) {
	_, err := NewBuilder().
		Node("x").
		Node("x").
		Edge("copy", "nope", []Input{Bind("in", "x")}, passThrough{}).
		Build()
	require.Error(t, err)
	assert.True(t, IsDuplicateNode(err))
}

func TestError_Format(t *testing.T) {
	err := &Error{Code: ErrCodeUnknownNode, Message: "missing", Edge: "e", Node: "n"}
	assert.Equal(t, "UNKNOWN_NODE: missing (edge=e, node=n)", err.Error())

	err = &Error{Code: ErrCodeDuplicateNode, Message: "dup", Node: "n"}
	assert.Equal(t, "DUPLICATE_NODE_NAME: dup (node=n)", err.Error())
}
