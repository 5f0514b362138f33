package pendulum

import (
	"math"

	"github.com/roach88/chg/internal/graph"
)

// Node names of the simple pendulum.
const (
	SimpleTheta  = "theta"
	SimpleOmega  = "omega"
	SimpleAlpha  = "alpha"
	SimpleLength = "l"
)

// NewSimple builds a single undamped pendulum integrated explicitly.
func NewSimple() (*graph.Registry, error) {
	b := graph.NewBuilder().
		Node(G, graph.WithValue(9.81), graph.WithUnits("m/s^2")).
		Node(Step, graph.WithValue(0.1), graph.WithUnits("s")).
		Node(Time, graph.WithUnits("s")).
		Node(SimpleLength, graph.WithValue(1), graph.WithUnits("m")).
		Node(SimpleTheta, graph.WithUnits("rad")).
		Node(SimpleOmega, graph.WithUnits("rad/s")).
		Node(SimpleAlpha, graph.WithUnits("rad/s^2"))

	b.Edge("simple_pend", SimpleAlpha,
		[]graph.Input{
			graph.Bind("g", G),
			graph.Bind("l", SimpleLength),
			graph.Bind("theta", SimpleTheta),
		},
		SimpleAngularAccel{},
		graph.WithDisposable("theta"))

	integrate(b, "integrating_alpha->omega", SimpleOmega, SimpleAlpha)
	integrate(b, "integrating_omega->theta", SimpleTheta, SimpleOmega)
	advanceTime(b, Time, Step)
	return b.Build()
}

// SimpleInputs returns the default seeds of the simple model: released
// from rest just off upright.
func SimpleInputs() map[string]float64 {
	return map[string]float64{
		Time:        0,
		SimpleTheta: math.Pi / 16,
		SimpleOmega: 0,
	}
}
