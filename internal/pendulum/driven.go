package pendulum

import (
	"math"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/relations"
)

// Node names of the driven double pendulum.
const (
	G    = "g"
	Time = "time"
	Step = "step"

	LengthA = "l_A"
	LengthB = "l_B"

	ThetaA     = "theta_A"
	OmegaA     = "omega_A"
	PrevOmegaA = "prev_omega_A"
	AlphaA     = "alpha_A"

	ThetaB = "theta_B"
	OmegaB = "omega_B"
	AlphaB = "alpha_B"

	DrivenSpeed  = "driven_speed"
	DrivenPeriod = "driven_period"

	XB     = "x_B"
	XdotB  = "xdot_B"
	XddotB = "xddot_B"
	YB     = "y_B"
	YdotB  = "ydot_B"
	YddotB = "yddot_B"
)

// NewDriven builds the driven double pendulum.
//
// Arm A follows DrivenVelocity; its angular acceleration is the backward
// difference of that velocity. The end of A accelerates the pivot of B,
// whose angular acceleration is integrated explicitly:
//
//	omega_B[i+1] = omega_B[i] + alpha_B[i]*step
//	theta_B[i+1] = theta_B[i] + omega_B[i]*step
//
// Seed it with DrivenInputs.
func NewDriven() (*graph.Registry, error) {
	b := graph.NewBuilder().
		Node(G, graph.WithUnits("m/s^2")).
		Node(Time, graph.WithUnits("s")).
		Node(Step, graph.WithUnits("s")).
		Node(LengthA, graph.WithUnits("m")).
		Node(LengthB, graph.WithUnits("m")).
		Node(ThetaA, graph.WithUnits("rad")).
		Node(OmegaA, graph.WithUnits("rad/s")).
		Node(PrevOmegaA, graph.WithUnits("rad/s"), graph.WithDescription("omega_A as read one step later")).
		Node(AlphaA, graph.WithUnits("rad/s^2")).
		Node(ThetaB, graph.WithUnits("rad")).
		Node(OmegaB, graph.WithUnits("rad/s")).
		Node(AlphaB, graph.WithUnits("rad/s^2")).
		Node(DrivenSpeed, graph.WithUnits("rad/s")).
		Node(DrivenPeriod, graph.WithUnits("s")).
		Node(XB, graph.WithUnits("m")).
		Node(XdotB, graph.WithUnits("m/s")).
		Node(XddotB, graph.WithUnits("m/s^2")).
		Node(YB, graph.WithUnits("m")).
		Node(YdotB, graph.WithUnits("m/s")).
		Node(YddotB, graph.WithUnits("m/s^2"))

	armA := []graph.Input{
		graph.Bind("alpha", AlphaA),
		graph.Bind("omega", OmegaA),
		graph.Bind("theta", ThetaA),
	}
	b.Edge("horizontal_accel_B", XddotB, armA, HorizontalAccel{},
		graph.WithDisposable("alpha", "omega", "theta"))
	b.Edge("vertical_accel_B", YddotB, armA, VerticalAccel{},
		graph.WithDisposable("alpha", "omega", "theta"))

	b.Edge("angular_accel_translating_base_B", AlphaB,
		[]graph.Input{
			graph.Bind("xddot", XddotB),
			graph.Bind("yddot", YddotB),
			graph.Bind("theta", ThetaB),
			graph.Bind("g", G),
		},
		TranslatingBaseAccel{},
		graph.WithDisposable("xddot", "yddot", "theta"))

	b.Edge("driven_velocity_A", OmegaA,
		[]graph.Input{
			graph.Bind("time", Time),
			graph.Bind("period", DrivenPeriod),
			graph.Bind("speed", DrivenSpeed),
		},
		DrivenVelocity{},
		graph.WithDisposable("time"))

	b.Edge("prev_omega_A", PrevOmegaA,
		[]graph.Input{graph.Bind("omega", OmegaA)},
		relations.Identity{Input: "omega"})

	b.Edge("differentiate_omega_A->alpha_A", AlphaA,
		[]graph.Input{
			graph.Bind("y2", OmegaA),
			graph.BindAt("y1", PrevOmegaA, graph.Shift(-1)),
			graph.Bind("step", Step),
		},
		relations.Differentiate{},
		graph.WithValidity(graph.OneApart("y1", "y2")),
		graph.WithDisposable("y2", "y1"))

	integrate(b, "integrating_omega_A->theta_A", ThetaA, OmegaA)
	integrate(b, "integrating_alpha_B->omega_B", OmegaB, AlphaB)
	integrate(b, "integrating_omega_B->theta_B", ThetaB, OmegaB)

	advanceTime(b, Time, Step)
	return b.Build()
}

// integrate adds explicit Euler: target[i+1] = target[i] + slope[i]*step.
func integrate(b *graph.Builder, label, target, slope string) {
	b.Edge(label, target,
		[]graph.Input{
			graph.Bind("base", target),
			graph.Bind("slope", slope),
			graph.Bind("step", Step),
		},
		relations.Euler{},
		graph.WithOffset(1),
		graph.WithDisposable("base", "slope"))
}

// advanceTime adds time[i+1] = time[i] + step.
func advanceTime(b *graph.Builder, time, step string) {
	b.Edge("advance_time", time,
		[]graph.Input{graph.Bind("time", time), graph.Bind("step", step)},
		relations.Sum{Terms: []string{"time", "step"}},
		graph.WithOffset(1))
}

// DrivenInputs returns the default seeds of the driven model: a 0.1 s
// step, A starting at 0 without acceleration, B released from rest at pi/4,
// and A driven at pi/4 rad/s with a 4 s period.
func DrivenInputs() map[string]float64 {
	return map[string]float64{
		Time:         0,
		Step:         0.1,
		G:            9.81,
		AlphaA:       0,
		ThetaA:       0,
		ThetaB:       math.Pi / 4,
		OmegaB:       0,
		DrivenSpeed:  math.Pi / 4,
		DrivenPeriod: 4,
	}
}
