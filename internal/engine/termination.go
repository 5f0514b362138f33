package engine

import (
	"fmt"
	"strings"
)

// Termination decides whether a resolved target value ends the solve.
// It is only consulted at indices >= Request.MinIndex.
type Termination interface {
	Done(value float64, index int) bool
	String() string
}

// IndexAtLeast terminates once the target reaches index k.
func IndexAtLeast(k int) Termination {
	return indexAtLeast(k)
}

type indexAtLeast int

func (t indexAtLeast) Done(_ float64, index int) bool { return index >= int(t) }
func (t indexAtLeast) String() string                 { return fmt.Sprintf("index>=%d", int(t)) }

// ValueAtLeast terminates once the target value reaches v.
func ValueAtLeast(v float64) Termination {
	return valueAtLeast(v)
}

type valueAtLeast float64

func (t valueAtLeast) Done(value float64, _ int) bool { return value >= float64(t) }
func (t valueAtLeast) String() string                 { return fmt.Sprintf("value>=%v", float64(t)) }

// ValueAtMost terminates once the target value drops to v.
func ValueAtMost(v float64) Termination {
	return valueAtMost(v)
}

type valueAtMost float64

func (t valueAtMost) Done(value float64, _ int) bool { return value <= float64(t) }
func (t valueAtMost) String() string                 { return fmt.Sprintf("value<=%v", float64(t)) }

// AllOf terminates when every condition holds.
func AllOf(ts ...Termination) Termination {
	return allOf(ts)
}

type allOf []Termination

func (ts allOf) Done(value float64, index int) bool {
	for _, t := range ts {
		if !t.Done(value, index) {
			return false
		}
	}
	return true
}

func (ts allOf) String() string {
	return joinTerminations("all", ts)
}

// AnyOf terminates when at least one condition holds.
func AnyOf(ts ...Termination) Termination {
	return anyOf(ts)
}

type anyOf []Termination

func (ts anyOf) Done(value float64, index int) bool {
	for _, t := range ts {
		if t.Done(value, index) {
			return true
		}
	}
	return false
}

func (ts anyOf) String() string {
	return joinTerminations("any", ts)
}

func joinTerminations(op string, ts []Termination) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return op + "(" + strings.Join(parts, ",") + ")"
}
