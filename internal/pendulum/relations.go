package pendulum

import (
	"math"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/relations"
)

// read returns the named arguments in order.
func read(args graph.Args, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		v, err := args.Float(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// HorizontalAccel is the horizontal acceleration of the end of an arm:
// alpha*cos(theta) - omega^2*sin(theta). Assumes equal bob masses and arm
// lengths.
type HorizontalAccel struct{}

func (HorizontalAccel) Name() string     { return "horizontal_accel" }
func (HorizontalAccel) Params() []string { return []string{"alpha", "omega", "theta"} }

func (r HorizontalAccel) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	alpha, omega, theta := v[0], v[1], v[2]
	return alpha*math.Cos(theta) - omega*omega*math.Sin(theta), nil
}

// VerticalAccel is the vertical acceleration of the end of an arm:
// alpha*sin(theta) + omega^2*cos(theta).
type VerticalAccel struct{}

func (VerticalAccel) Name() string     { return "vertical_accel" }
func (VerticalAccel) Params() []string { return []string{"alpha", "omega", "theta"} }

func (r VerticalAccel) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	alpha, omega, theta := v[0], v[1], v[2]
	return alpha*math.Sin(theta) + omega*omega*math.Cos(theta), nil
}

// TranslatingBaseAccel is the angular acceleration of an undamped arm whose
// pivot translates with acceleration (xddot, yddot):
// -xddot*cos(theta) - sin(yddot + g).
type TranslatingBaseAccel struct{}

func (TranslatingBaseAccel) Name() string     { return "translating_base_accel" }
func (TranslatingBaseAccel) Params() []string { return []string{"xddot", "yddot", "theta", "g"} }

func (r TranslatingBaseAccel) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	xddot, yddot, theta, g := v[0], v[1], v[2], v[3]
	return -xddot*math.Cos(theta) - math.Sin(yddot+g), nil
}

// DrivenVelocity is a square wave: speed for the first half of each period,
// -speed for the second half.
type DrivenVelocity struct{}

func (DrivenVelocity) Name() string     { return "driven_velocity" }
func (DrivenVelocity) Params() []string { return []string{"time", "period", "speed"} }

func (r DrivenVelocity) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	t, period, speed := v[0], v[1], v[2]
	if period <= 0 {
		return 0, relations.Domainf("driven period must be positive, got %v", period)
	}
	phase := math.Mod(t, period)
	if phase < 0 {
		phase += period
	}
	if phase/period > 0.5 {
		return -speed, nil
	}
	return speed, nil
}

// SimpleAngularAccel is the angular acceleration of an undamped pendulum
// with theta measured from upright: g/l*sin(theta).
type SimpleAngularAccel struct{}

func (SimpleAngularAccel) Name() string     { return "simple_angular_accel" }
func (SimpleAngularAccel) Params() []string { return []string{"g", "l", "theta"} }

func (r SimpleAngularAccel) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	g, l, theta := v[0], v[1], v[2]
	ratio, err := relations.Divide(g, l)
	if err != nil {
		return 0, err
	}
	return ratio * math.Sin(theta), nil
}

// MassRatio is mu = 1 + mA/mB.
type MassRatio struct{}

func (MassRatio) Name() string     { return "mass_ratio" }
func (MassRatio) Params() []string { return []string{"mA", "mB"} }

func (r MassRatio) Evaluate(args graph.Args) (float64, error) {
	v, err := read(args, r.Params()...)
	if err != nil {
		return 0, err
	}
	q, err := relations.Divide(v[0], v[1])
	if err != nil {
		return 0, err
	}
	return 1 + q, nil
}

// doubleParams are the inputs of both free double pendulum equations.
var doubleParams = []string{"thetaA", "thetaB", "omegaA", "omegaB", "mu", "rA", "rB", "g"}

type doubleState struct {
	thetaA, thetaB, omegaA, omegaB, mu, rA, rB, g float64
}

func readDouble(args graph.Args) (doubleState, error) {
	v, err := read(args, doubleParams...)
	if err != nil {
		return doubleState{}, err
	}
	return doubleState{v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7]}, nil
}

// DoubleAccelA is the angular acceleration of the upper arm of a free double
// pendulum. The denominator rA*(mu - cos(thetaA-thetaB)^2) vanishes for
// massless A bobs in line with B; that is a domain error.
type DoubleAccelA struct{}

func (DoubleAccelA) Name() string     { return "double_accel_A" }
func (DoubleAccelA) Params() []string { return doubleParams }

func (DoubleAccelA) Evaluate(args graph.Args) (float64, error) {
	s, err := readDouble(args)
	if err != nil {
		return 0, err
	}
	diff := s.thetaA - s.thetaB
	numer := s.g * (math.Sin(s.thetaB)*math.Cos(diff) - s.mu*math.Sin(s.thetaA))
	numer -= (s.rB*s.omegaB*s.omegaB + s.rA*s.omegaA*s.omegaA*math.Cos(diff)) * math.Sin(diff)
	denom := s.rA * (s.mu - math.Pow(math.Cos(diff), 2))
	return relations.Divide(numer, denom)
}

// DoubleAccelB is the angular acceleration of the lower arm of a free
// double pendulum.
type DoubleAccelB struct{}

func (DoubleAccelB) Name() string     { return "double_accel_B" }
func (DoubleAccelB) Params() []string { return doubleParams }

func (DoubleAccelB) Evaluate(args graph.Args) (float64, error) {
	s, err := readDouble(args)
	if err != nil {
		return 0, err
	}
	diff := s.thetaA - s.thetaB
	numer := s.g * (math.Sin(s.thetaA)*math.Cos(diff) - math.Sin(s.thetaB))
	numer += s.mu*math.Sin(diff) + (s.rB*s.omegaA*s.omegaA + s.rA*s.omegaB*s.omegaB*math.Cos(diff))
	denom := s.rB * (s.mu - math.Pow(math.Cos(diff), 2))
	return relations.Divide(numer, denom)
}
