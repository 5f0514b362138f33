package engine

import "sync/atomic"

// Clock stamps memoized values with a monotonic logical sequence number.
//
// Seq orders the trace's critical path by production order. It is logical,
// never wall-clock, so identical solves produce identical stamps.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
