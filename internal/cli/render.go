package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/pendulum"
)

// writeTrace renders a trace for humans. Failures are listed only when
// verbose.
func writeTrace(w io.Writer, t *engine.Trace, verbose bool) {
	fmt.Fprintf(w, "Solved %s[%d] = %v (termination %s)\n", t.Target, t.FinalIndex, t.FinalValue, t.Termination)
	fmt.Fprintf(w, "attempts %d/%d, produced %d, invalid %d, unresolved %d, computation errors %d, cycles %d\n",
		t.Stats.Attempts, t.Stats.Limit, t.Stats.Produced, t.Stats.Invalid,
		t.Stats.Unresolved, t.Stats.ComputationErrors, t.Stats.Cycles)

	names := t.Nodes()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Values:")
	for _, n := range names {
		if v, ok := t.Constants[n]; ok {
			fmt.Fprintf(w, "  %-*s = %v\n", width, n, v)
			continue
		}
		s := t.Series[n]
		fmt.Fprintf(w, "  %-*s %s\n", width, n, formatSeries(s.Indices, s.Values))
	}

	if len(t.Path) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Critical path:")
		writeSteps(w, t.Path)
	}

	if len(t.Transient) > 0 {
		fmt.Fprintf(w, "\nTransient: %s\n", strings.Join(t.Transient, ", "))
	}

	if verbose && len(t.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Computation errors:")
		for _, f := range t.Failures {
			fmt.Fprintf(w, "  %s -> %s[%d]: %s\n", f.Edge, f.Node, f.Index, f.Message)
		}
	}
}

// writeSteps renders critical path firings, one per line.
func writeSteps(w io.Writer, steps []engine.Step) {
	for _, s := range steps {
		inputs := make([]string, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = in.String()
		}
		produced := fmt.Sprintf("%s[%d]", s.Node, s.Index)
		if s.Constant {
			produced = s.Node
		}
		fmt.Fprintf(w, "  [%d] %s: %s = %v <- %s\n", s.Seq, s.Edge, produced, s.Value, strings.Join(inputs, ", "))
	}
}

// formatSeries renders a history as [v0 v1 ...], or with explicit indices
// when it does not start at 0 or has gaps.
func formatSeries(indices []int, values []float64) string {
	contiguous := true
	for k, i := range indices {
		if i != k {
			contiguous = false
			break
		}
	}

	parts := make([]string, len(values))
	for k, v := range values {
		if contiguous {
			parts[k] = fmt.Sprintf("%v", v)
		} else {
			parts[k] = fmt.Sprintf("%d:%v", indices[k], v)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// writeFrames renders bob positions, one index per line.
func writeFrames(w io.Writer, frames []pendulum.Frame) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Frames (index time x1 y1 x2 y2):")
	for _, f := range frames {
		fmt.Fprintf(w, "  %d %.4f %.4f %.4f %.4f %.4f\n", f.Index, f.Time, f.X1, f.Y1, f.X2, f.Y2)
	}
}
