package pendulum

import (
	"fmt"
	"math"
)

// Frame is the position of both bobs at one index. The pivot of arm A is
// the origin; y points up.
type Frame struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
}

// FrameSpec names the histories a rendering reads. Zero fields take the
// driven model's names, unit arm lengths and the step seeded in the values.
type FrameSpec struct {
	ThetaA  string
	ThetaB  string
	LengthA string
	LengthB string
	Step    string
}

func (s FrameSpec) withDefaults() FrameSpec {
	if s.ThetaA == "" {
		s.ThetaA = ThetaA
	}
	if s.ThetaB == "" {
		s.ThetaB = ThetaB
	}
	if s.LengthA == "" {
		s.LengthA = LengthA
	}
	if s.LengthB == "" {
		s.LengthB = LengthB
	}
	if s.Step == "" {
		s.Step = Step
	}
	return s
}

// FreeFrameSpec reads the free model's histories.
var FreeFrameSpec = FrameSpec{
	ThetaA:  FreeThetaA,
	ThetaB:  FreeThetaB,
	LengthA: FreeRA,
	LengthB: FreeRB,
}

// Frames converts solved angle histories into bob coordinates, one frame per
// index both angles share:
//
//	x1 = lA*sin(thetaA)   y1 = -lA*cos(thetaA)
//	x2 = x1 + lB*sin(thetaB)   y2 = y1 - lB*cos(thetaB)
//
// values is a trace's Values. Missing lengths default to 1 and a missing
// step to 0.
func Frames(values map[string][]float64, layout FrameSpec) ([]Frame, error) {
	layout = layout.withDefaults()

	thetaA, ok := values[layout.ThetaA]
	if !ok {
		return nil, fmt.Errorf("frames: no values for %s", layout.ThetaA)
	}
	thetaB, ok := values[layout.ThetaB]
	if !ok {
		return nil, fmt.Errorf("frames: no values for %s", layout.ThetaB)
	}
	lA := first(values, layout.LengthA, 1)
	lB := first(values, layout.LengthB, 1)
	step := first(values, layout.Step, 0)

	n := min(len(thetaA), len(thetaB))
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		x1 := lA * math.Sin(thetaA[i])
		y1 := -lA * math.Cos(thetaA[i])
		frames[i] = Frame{
			Index: i,
			Time:  float64(i) * step,
			X1:    x1,
			Y1:    y1,
			X2:    x1 + lB*math.Sin(thetaB[i]),
			Y2:    y1 - lB*math.Cos(thetaB[i]),
		}
	}
	return frames, nil
}

func first(values map[string][]float64, name string, def float64) float64 {
	if vs := values[name]; len(vs) > 0 {
		return vs[0]
	}
	return def
}
