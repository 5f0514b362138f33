package pendulum

import (
	"math"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/relations"
)

// Node names of the free double pendulum.
const (
	FreeThetaA = "thetaA"
	FreeOmegaA = "omegaA"
	FreeAlphaA = "alphaA"
	FreeRA     = "rA"
	FreeMassA  = "massA"

	FreeThetaB = "thetaB"
	FreeOmegaB = "omegaB"
	FreeAlphaB = "alphaB"
	FreeRB     = "rB"
	FreeMassB  = "massB"

	FreeMu = "mu"
)

// NewFree builds the free double pendulum.
//
// Accelerations at i+1 come from the state at i; velocities and angles are
// integrated semi-implicitly:
//
//	omega[i] = omega[i-1] + alpha[i]*step
//	theta[i] = theta[i-1] + omega[i]*step
//
// g defaults to 9.81 and step to 0.1. Seed it with FreeInputs.
func NewFree() (*graph.Registry, error) {
	b := graph.NewBuilder().
		Node(G, graph.WithValue(9.81), graph.WithUnits("m/s^2"), graph.WithDescription("gravitational acceleration")).
		Node(Step, graph.WithValue(0.1), graph.WithUnits("s"), graph.WithDescription("time step")).
		Node(Time, graph.WithUnits("s"), graph.WithDescription("current simulation time")).
		Node(FreeThetaA, graph.WithUnits("rad"), graph.WithDescription("angular position")).
		Node(FreeOmegaA, graph.WithUnits("rad/s"), graph.WithDescription("angular velocity")).
		Node(FreeAlphaA, graph.WithUnits("rad/s^2"), graph.WithDescription("angular acceleration")).
		Node(FreeRA, graph.WithUnits("m"), graph.WithDescription("length of tether")).
		Node(FreeMassA, graph.WithUnits("kg"), graph.WithDescription("mass of bob")).
		Node(FreeThetaB, graph.WithUnits("rad"), graph.WithDescription("angular position")).
		Node(FreeOmegaB, graph.WithUnits("rad/s"), graph.WithDescription("angular velocity")).
		Node(FreeAlphaB, graph.WithUnits("rad/s^2"), graph.WithDescription("angular acceleration")).
		Node(FreeRB, graph.WithUnits("m"), graph.WithDescription("length of tether")).
		Node(FreeMassB, graph.WithUnits("kg"), graph.WithDescription("mass of bob")).
		Node(FreeMu, graph.WithDescription("mass ratio"))

	state := []graph.Input{
		graph.Bind("thetaA", FreeThetaA),
		graph.Bind("thetaB", FreeThetaB),
		graph.Bind("omegaA", FreeOmegaA),
		graph.Bind("omegaB", FreeOmegaB),
		graph.Bind("mu", FreeMu),
		graph.Bind("rA", FreeRA),
		graph.Bind("rB", FreeRB),
		graph.Bind("g", G),
	}
	b.Edge("double_accel_A", FreeAlphaA, state, DoubleAccelA{}, graph.WithOffset(1))
	b.Edge("double_accel_B", FreeAlphaB, state, DoubleAccelB{}, graph.WithOffset(1))

	integrateSemiImplicit(b, "integrating_alphaA->omegaA", FreeOmegaA, FreeAlphaA)
	integrateSemiImplicit(b, "integrating_omegaA->thetaA", FreeThetaA, FreeOmegaA)
	integrateSemiImplicit(b, "integrating_alphaB->omegaB", FreeOmegaB, FreeAlphaB)
	integrateSemiImplicit(b, "integrating_omegaB->thetaB", FreeThetaB, FreeOmegaB)

	b.Edge("mass_ratio", FreeMu,
		[]graph.Input{graph.Bind("mA", FreeMassA), graph.Bind("mB", FreeMassB)},
		MassRatio{})

	advanceTime(b, Time, Step)
	return b.Build()
}

// integrateSemiImplicit adds target[i] = target[i-1] + slope[i]*step.
func integrateSemiImplicit(b *graph.Builder, label, target, slope string) {
	b.Edge(label, target,
		[]graph.Input{
			graph.BindAt("base", target, graph.Shift(-1)),
			graph.Bind("slope", slope),
			graph.Bind("step", Step),
		},
		relations.Euler{},
		graph.WithValidity(graph.OneApart("base", "slope")))
}

// FreeInputs returns the default seeds of the free model: unit arms and
// masses released from rest at +pi/4 and -pi/4.
func FreeInputs() map[string]float64 {
	return map[string]float64{
		Time:       0,
		FreeThetaA: math.Pi / 4,
		FreeOmegaA: 0,
		FreeRA:     1,
		FreeMassA:  1,
		FreeThetaB: -math.Pi / 4,
		FreeOmegaB: 0,
		FreeRB:     1,
		FreeMassB:  1,
	}
}
