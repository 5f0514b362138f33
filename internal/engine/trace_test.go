package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/relations"
)

// scaledGraph is y[i] = 2*x[i], x[i+1] = x[i] + step, with x read
// disposably by the scaling edge.
func scaledGraph(t *testing.T) *graph.Registry {
	t.Helper()
	reg, err := graph.NewBuilder().
		Node("x").
		Node("y").
		Node("step", graph.WithValue(1)).
		Edge("advance_x", "x",
			[]graph.Input{graph.Bind("x", "x"), graph.Bind("step", "step")},
			relations.Sum{Terms: []string{"x", "step"}},
			graph.WithOffset(1)).
		Edge("double", "y",
			[]graph.Input{graph.Bind("x", "x")},
			relations.Scale{Input: "x", Factor: 2}).
		Build()
	require.NoError(t, err)
	return reg
}

func TestTrace_CriticalPath(t *testing.T) {
	reg := clockGraph(t)
	trace, err := newTestResolver().Solve(context.Background(), reg, Request{
		Target:   "time",
		Seeds:    map[string]float64{"time": 0},
		MinIndex: 2,
	})
	require.NoError(t, err)

	require.Len(t, trace.Path, 2)
	assert.Equal(t, "advance", trace.Path[0].Edge)
	assert.Equal(t, 1, trace.Path[0].Index)
	assert.Equal(t, []Ref{{Node: "time", Index: 0}, {Node: "step", Constant: true}}, trace.Path[0].Inputs)
	assert.Equal(t, 2, trace.Path[1].Index)
	assert.Less(t, trace.Path[0].Seq, trace.Path[1].Seq)
}

func TestTrace_TransientAndPruned(t *testing.T) {
	reg, err := graph.NewBuilder().
		Node("x").
		Node("y").
		Node("step", graph.WithValue(1)).
		Edge("advance_x", "x",
			[]graph.Input{graph.Bind("x", "x"), graph.Bind("step", "step")},
			relations.Sum{Terms: []string{"x", "step"}},
			graph.WithOffset(1), graph.WithDisposable("x")).
		Edge("double", "y",
			[]graph.Input{graph.Bind("x", "x")},
			relations.Scale{Input: "x", Factor: 2},
			graph.WithDisposable("x")).
		Build()
	require.NoError(t, err)

	trace, err := newTestResolver().Solve(context.Background(), reg, Request{
		Target:   "y",
		Seeds:    map[string]float64{"x": 0},
		MinIndex: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, trace.Transient)
	assert.Equal(t, []float64{0, 2, 4}, trace.Values["y"])

	pruned := trace.Pruned()
	assert.NotContains(t, pruned.Values, "x")
	assert.NotContains(t, pruned.Series, "x")
	assert.Contains(t, pruned.Values, "y")
	assert.Contains(t, trace.Values, "x", "original trace is unchanged")
}

func TestTrace_NoTransientWhenReadNormally(t *testing.T) {
	trace, err := newTestResolver().Solve(context.Background(), scaledGraph(t), Request{
		Target: "y",
		Seeds:  map[string]float64{"x": 0},
	})
	require.NoError(t, err)
	assert.Empty(t, trace.Transient)
	assert.Same(t, trace, trace.Pruned())
}

func TestTrace_HashIgnoresStats(t *testing.T) {
	reg := clockGraph(t)
	req := Request{Target: "time", Seeds: map[string]float64{"time": 0}, MinIndex: 3}

	a, err := newTestResolver().Solve(context.Background(), reg, req)
	require.NoError(t, err)
	req.SearchDepth = 50
	b, err := newTestResolver().Solve(context.Background(), reg, req)
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.NotEqual(t, a.Stats.Limit, b.Stats.Limit)
}

func TestTrace_HashDiffersWithValues(t *testing.T) {
	reg := clockGraph(t)

	a, err := newTestResolver().Solve(context.Background(), reg, Request{
		Target: "time", Seeds: map[string]float64{"time": 0}, MinIndex: 3,
	})
	require.NoError(t, err)
	b, err := newTestResolver().Solve(context.Background(), reg, Request{
		Target: "time", Seeds: map[string]float64{"time": 1}, MinIndex: 3,
	})
	require.NoError(t, err)

	ha, _ := a.Hash()
	hb, _ := b.Hash()
	assert.NotEqual(t, ha, hb)
}

func TestTrace_NodesAndString(t *testing.T) {
	trace, err := newTestResolver().Solve(context.Background(), scaledGraph(t), Request{
		Target:   "y",
		Seeds:    map[string]float64{"x": 0},
		MinIndex: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"step", "x", "y"}, trace.Nodes())
	assert.Equal(t, "y[1]=2 (3 nodes, 2 steps, 3 attempts)", trace.String())
}
