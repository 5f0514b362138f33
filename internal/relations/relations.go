package relations

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/chg/internal/graph"
)

// ErrDomain marks a relation evaluated outside its mathematical domain
// (division by zero, non-finite result).
var ErrDomain = errors.New("relation domain error")

// Domainf builds an error wrapping ErrDomain.
func Domainf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}

// Divide returns numer/denom, or a domain error when denom is exactly zero
// or the quotient is not finite.
func Divide(numer, denom float64) (float64, error) {
	if denom == 0 {
		return 0, Domainf("division by zero (numerator %v)", numer)
	}
	q := numer / denom
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, Domainf("non-finite quotient %v/%v", numer, denom)
	}
	return q, nil
}

// Sum adds its terms. With no Terms it adds every bound input in name
// order.
type Sum struct {
	Terms []string
}

func (s Sum) Name() string     { return "sum" }
func (s Sum) Params() []string { return s.Terms }

func (s Sum) Evaluate(args graph.Args) (float64, error) {
	names := s.Terms
	if len(names) == 0 {
		names = args.Names()
	}
	total := 0.0
	for _, n := range names {
		v, err := args.Float(n)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Product multiplies its factors. With no Factors it multiplies every bound
// input in name order.
type Product struct {
	Factors []string
}

func (p Product) Name() string     { return "product" }
func (p Product) Params() []string { return p.Factors }

func (p Product) Evaluate(args graph.Args) (float64, error) {
	names := p.Factors
	if len(names) == 0 {
		names = args.Names()
	}
	total := 1.0
	for _, n := range names {
		v, err := args.Float(n)
		if err != nil {
			return 0, err
		}
		total *= v
	}
	return total, nil
}

// Identity passes one input through unchanged.
type Identity struct {
	Input string
}

func (r Identity) Name() string     { return "identity" }
func (r Identity) Params() []string { return []string{r.Input} }

func (r Identity) Evaluate(args graph.Args) (float64, error) {
	return args.Float(r.Input)
}

// Euler is first order explicit integration: base + slope*step.
// Inputs: base, slope, step.
type Euler struct{}

func (Euler) Name() string     { return "euler" }
func (Euler) Params() []string { return []string{"base", "slope", "step"} }

func (Euler) Evaluate(args graph.Args) (float64, error) {
	base, err := args.Float("base")
	if err != nil {
		return 0, err
	}
	slope, err := args.Float("slope")
	if err != nil {
		return 0, err
	}
	step, err := args.Float("step")
	if err != nil {
		return 0, err
	}
	return base + slope*step, nil
}

// Differentiate is the backward difference (y2 - y1) / step.
// Inputs: y1, y2, step. Pair it with graph.OneApart("y1", "y2").
type Differentiate struct{}

func (Differentiate) Name() string     { return "differentiate" }
func (Differentiate) Params() []string { return []string{"y1", "y2", "step"} }

func (Differentiate) Evaluate(args graph.Args) (float64, error) {
	y1, err := args.Float("y1")
	if err != nil {
		return 0, err
	}
	y2, err := args.Float("y2")
	if err != nil {
		return 0, err
	}
	step, err := args.Float("step")
	if err != nil {
		return 0, err
	}
	return Divide(y2-y1, step)
}

// Scale multiplies one input by a fixed factor.
type Scale struct {
	Input  string
	Factor float64
}

func (r Scale) Name() string     { return "scale" }
func (r Scale) Params() []string { return []string{r.Input} }

func (r Scale) Evaluate(args graph.Args) (float64, error) {
	v, err := args.Float(r.Input)
	if err != nil {
		return 0, err
	}
	return v * r.Factor, nil
}
