// Package models is the catalog of graphs chg can solve by name.
package models

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/pendulum"
	"github.com/roach88/chg/internal/relations"
)

// Model is a named graph with default seeds and target.
type Model struct {
	Name        string
	Description string

	// Target and MinIndex are the defaults a solve uses when the
	// configuration leaves them out.
	Target   string
	MinIndex int

	// Frames, when set, tells a renderer which histories draw the model.
	Frames *pendulum.FrameSpec

	build  func() (*graph.Registry, error)
	inputs func() map[string]float64
}

// Build returns a fresh registry for the model.
func (m Model) Build() (*graph.Registry, error) {
	reg, err := m.build()
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", m.Name, err)
	}
	return reg, nil
}

// Inputs returns a fresh copy of the model's default seeds.
func (m Model) Inputs() map[string]float64 {
	if m.inputs == nil {
		return map[string]float64{}
	}
	return m.inputs()
}

var (
	drivenFrames = pendulum.FrameSpec{}
	freeFrames   = pendulum.FreeFrameSpec
)

var catalog = map[string]Model{
	"clock": {
		Name:        "clock",
		Description: "time[i+1] = time[i] + step",
		Target:      "time",
		MinIndex:    3,
		build:       newClock,
		inputs:      func() map[string]float64 { return map[string]float64{"time": 0} },
	},
	"euler": {
		Name:        "euler",
		Description: "theta[i+1] = theta[i] + omega[i]*step with constant omega",
		Target:      "theta",
		MinIndex:    5,
		build:       newEuler,
		inputs: func() map[string]float64 {
			return map[string]float64{"theta": math.Pi / 4, "omega": 0}
		},
	},
	"pendulum/driven": {
		Name:        "pendulum/driven",
		Description: "double pendulum with a square-wave driven upper arm",
		Target:      pendulum.ThetaB,
		MinIndex:    3,
		Frames:      &drivenFrames,
		build:       pendulum.NewDriven,
		inputs:      pendulum.DrivenInputs,
	},
	"pendulum/free": {
		Name:        "pendulum/free",
		Description: "free double pendulum with unequal masses",
		Target:      pendulum.FreeThetaA,
		MinIndex:    20,
		Frames:      &freeFrames,
		build:       pendulum.NewFree,
		inputs:      pendulum.FreeInputs,
	},
	"pendulum/simple": {
		Name:        "pendulum/simple",
		Description: "single undamped pendulum",
		Target:      pendulum.SimpleTheta,
		MinIndex:    10,
		build:       pendulum.NewSimple,
		inputs:      pendulum.SimpleInputs,
	},
}

// Lookup returns the named model.
func Lookup(name string) (Model, error) {
	m, ok := catalog[name]
	if !ok {
		return Model{}, fmt.Errorf("unknown model %q (known: %v)", name, Names())
	}
	return m, nil
}

// Names returns the model names in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns every model sorted by name.
func All() []Model {
	out := make([]Model, 0, len(catalog))
	for _, n := range Names() {
		out = append(out, catalog[n])
	}
	return out
}

func newClock() (*graph.Registry, error) {
	return graph.NewBuilder().
		Node("time", graph.WithUnits("s")).
		Node("step", graph.WithValue(0.1), graph.WithUnits("s")).
		Edge("advance_time", "time",
			[]graph.Input{graph.Bind("time", "time"), graph.Bind("step", "step")},
			relations.Sum{Terms: []string{"time", "step"}},
			graph.WithOffset(1)).
		Build()
}

func newEuler() (*graph.Registry, error) {
	return graph.NewBuilder().
		Node("theta", graph.WithUnits("rad")).
		Node("omega", graph.WithUnits("rad/s")).
		Node("step", graph.WithValue(0.1), graph.WithUnits("s")).
		Edge("integrating_omega->theta", "theta",
			[]graph.Input{
				graph.Bind("base", "theta"),
				graph.Bind("slope", "omega"),
				graph.Bind("step", "step"),
			},
			relations.Euler{},
			graph.WithOffset(1)).
		Build()
}
