package engine

// ref identifies one resolvable value.
type ref struct {
	node  string
	index int
}

// inflight tracks the (node, index) pairs currently on the frame stack.
//
// A candidate combination that needs a value already being resolved further
// down the stack would loop forever (X[i] needs Y[i] needs X[i]). Such a
// combination is abandoned as InputsUnresolved instead of being pushed.
//
// Single-solve, single-goroutine: no locking.
type inflight struct {
	active map[ref]int
}

func newInflight() *inflight {
	return &inflight{active: make(map[ref]int)}
}

// WouldCycle reports whether resolving node at index would re-enter a frame
// that is still open.
func (c *inflight) WouldCycle(node string, index int) bool {
	return c.active[ref{node, index}] > 0
}

// Enter records that a frame for node at index was pushed.
func (c *inflight) Enter(node string, index int) {
	c.active[ref{node, index}]++
}

// Leave records that the frame was popped.
func (c *inflight) Leave(node string, index int) {
	r := ref{node, index}
	if c.active[r] <= 1 {
		delete(c.active, r)
		return
	}
	c.active[r]--
}

// Size returns the number of open (node, index) pairs.
func (c *inflight) Size() int {
	return len(c.active)
}
