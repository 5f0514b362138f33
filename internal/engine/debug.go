package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/chg/internal/graph"
)

// watchSet holds the node names and edge labels traced verbosely.
//
// Watched attempts are logged at Info, everything else at Debug. The set
// never influences the search.
type watchSet struct {
	nodes map[string]bool
	edges map[string]bool
}

func newWatchSet(nodes, edges []string) watchSet {
	w := watchSet{
		nodes: make(map[string]bool, len(nodes)),
		edges: make(map[string]bool, len(edges)),
	}
	for _, n := range nodes {
		w.nodes[n] = true
	}
	for _, e := range edges {
		w.edges[e] = true
	}
	return w
}

// touches reports whether node or edge (including the edge's inputs) is
// watched.
func (w watchSet) touches(node string, e *graph.Edge) bool {
	if w.nodes[node] {
		return true
	}
	if e == nil {
		return false
	}
	if w.edges[e.Label] {
		return true
	}
	for _, in := range e.Inputs {
		if in.Node != "" && w.nodes[in.Node] {
			return true
		}
	}
	return false
}

func (w watchSet) level(node string, e *graph.Edge) slog.Level {
	if w.touches(node, e) {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// warnUnknown logs watched names the registry does not know. A typo in a
// debug set is not an error.
func (w watchSet) warnUnknown(ctx context.Context, log *slog.Logger, reg *graph.Registry) {
	for n := range w.nodes {
		if _, ok := reg.Node(n); !ok {
			log.WarnContext(ctx, "debug node not in graph", "node", n)
		}
	}
	for l := range w.edges {
		if _, ok := reg.Edge(l); !ok {
			log.WarnContext(ctx, "debug edge not in graph", "edge", l)
		}
	}
}
