package pendulum

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chg/internal/engine"
	"github.com/roach88/chg/internal/graph"
	"github.com/roach88/chg/internal/relations"
)

func newResolver() *engine.Resolver {
	return engine.New(engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestRelations(t *testing.T) {
	tests := []struct {
		name string
		rel  graph.Relation
		args graph.Args
		want float64
	}{
		{"horizontal at rest", HorizontalAccel{}, graph.Args{"alpha": 1, "omega": 0, "theta": 0}, 1},
		{"horizontal spinning", HorizontalAccel{}, graph.Args{"alpha": 0, "omega": 2, "theta": math.Pi / 2}, -4},
		{"vertical", VerticalAccel{}, graph.Args{"alpha": 0, "omega": 2, "theta": 0}, 4},
		{"translating base", TranslatingBaseAccel{}, graph.Args{"xddot": 1, "yddot": 0, "theta": 0, "g": 0}, -1},
		{"driven first half", DrivenVelocity{}, graph.Args{"time": 1, "period": 4, "speed": 2}, 2},
		{"driven exactly half", DrivenVelocity{}, graph.Args{"time": 2, "period": 4, "speed": 2}, 2},
		{"driven second half", DrivenVelocity{}, graph.Args{"time": 3, "period": 4, "speed": 2}, -2},
		{"driven wraps", DrivenVelocity{}, graph.Args{"time": 5, "period": 4, "speed": 2}, 2},
		{"driven negative time", DrivenVelocity{}, graph.Args{"time": -1, "period": 4, "speed": 2}, -2},
		{"simple", SimpleAngularAccel{}, graph.Args{"g": 9.81, "l": 2, "theta": math.Pi / 2}, 4.905},
		{"mass ratio", MassRatio{}, graph.Args{"mA": 1, "mB": 4}, 1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rel.Evaluate(tt.args)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestRelations_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		rel  graph.Relation
		args graph.Args
	}{
		{"zero period", DrivenVelocity{}, graph.Args{"time": 1, "period": 0, "speed": 1}},
		{"zero length", SimpleAngularAccel{}, graph.Args{"g": 9.81, "l": 0, "theta": 1}},
		{"massless B", MassRatio{}, graph.Args{"mA": 1, "mB": 0}},
		{"singular A", DoubleAccelA{}, graph.Args{"thetaA": 0.3, "thetaB": 0.3, "omegaA": 0, "omegaB": 0, "mu": 1, "rA": 1, "rB": 1, "g": 9.81}},
		{"singular B", DoubleAccelB{}, graph.Args{"thetaA": 0, "thetaB": 0, "omegaA": 0, "omegaB": 0, "mu": 1, "rA": 1, "rB": 1, "g": 9.81}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rel.Evaluate(tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, relations.ErrDomain)
		})
	}
}

func TestRelations_MissingInput(t *testing.T) {
	_, err := DoubleAccelA{}.Evaluate(graph.Args{"thetaA": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thetaB")
}

func TestDoubleAccel_HangingAtRest(t *testing.T) {
	args := graph.Args{"thetaA": 0, "thetaB": 0, "omegaA": 0, "omegaB": 0, "mu": 2, "rA": 1, "rB": 1, "g": 9.81}

	a, err := DoubleAccelA{}.Evaluate(args)
	require.NoError(t, err)
	b, err := DoubleAccelB{}.Evaluate(args)
	require.NoError(t, err)
	assert.Equal(t, 0.0, a)
	assert.Equal(t, 0.0, b)
}

func TestDriven_Solve(t *testing.T) {
	reg, err := NewDriven()
	require.NoError(t, err)

	trace, err := newResolver().Solve(context.Background(), reg, engine.Request{
		Target:   ThetaB,
		Seeds:    DrivenInputs(),
		MinIndex: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, trace.FinalIndex)
	thetaB := trace.Values[ThetaB]
	require.Len(t, thetaB, 4)
	assert.Equal(t, math.Pi/4, thetaB[0])
	assert.Equal(t, math.Pi/4, thetaB[1], "omega_B starts at rest")

	// alpha_B[0] from the seeded state, integrated twice.
	yddot := math.Pow(math.Pi/4, 2)
	alphaB0 := -math.Sin(yddot + 9.81)
	omegaB1 := alphaB0 * 0.1
	assert.InDelta(t, alphaB0, trace.Values[AlphaB][0], 1e-12)
	assert.InDelta(t, math.Pi/4+omegaB1*0.1, thetaB[2], 1e-12)

	assert.Equal(t, []float64{math.Pi / 4, math.Pi / 4}, trace.Values[OmegaA][:2])
	assert.Equal(t, 0.0, trace.Values[AlphaA][1], "constant drive has no acceleration")
	assert.Contains(t, trace.Transient, XddotB)
}

func TestDriven_Deterministic(t *testing.T) {
	reg, err := NewDriven()
	require.NoError(t, err)
	req := engine.Request{Target: ThetaB, Seeds: DrivenInputs(), MinIndex: 40}

	a, err := newResolver().Solve(context.Background(), reg, req)
	require.NoError(t, err)
	b, err := newResolver().Solve(context.Background(), reg, req)
	require.NoError(t, err)

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Equal(t, a.Values, b.Values)
}

func TestDriven_DriveReverses(t *testing.T) {
	reg, err := NewDriven()
	require.NoError(t, err)

	trace, err := newResolver().Solve(context.Background(), reg, engine.Request{
		Target:   OmegaA,
		Seeds:    DrivenInputs(),
		MinIndex: 30,
	})
	require.NoError(t, err)

	omega := trace.Values[OmegaA]
	assert.InDelta(t, math.Pi/4, omega[10], 1e-12)  // t=1.0
	assert.InDelta(t, -math.Pi/4, omega[30], 1e-12) // t=3.0
}

func TestFree_Solve(t *testing.T) {
	reg, err := NewFree()
	require.NoError(t, err)

	trace, err := newResolver().Solve(context.Background(), reg, engine.Request{
		Target:   FreeThetaA,
		Seeds:    FreeInputs(),
		MinIndex: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, trace.Constants[FreeMu])
	thetaA, omegaA := trace.Values[FreeThetaA], trace.Values[FreeOmegaA]
	require.Len(t, thetaA, 21)
	for i := 1; i < len(thetaA); i++ {
		assert.InDelta(t, thetaA[i-1]+omegaA[i]*0.1, thetaA[i], 1e-12, "thetaA[%d]", i)
	}
}

func TestFree_SingularDenominator(t *testing.T) {
	reg, err := NewFree()
	require.NoError(t, err)

	seeds := FreeInputs()
	seeds[FreeMassA] = 0
	seeds[FreeThetaB] = seeds[FreeThetaA]

	trace, err := newResolver().Solve(context.Background(), reg, engine.Request{
		Target:   FreeThetaA,
		Seeds:    seeds,
		MinIndex: 5,
	})
	require.Error(t, err)
	assert.Nil(t, trace)
	assert.ErrorIs(t, err, engine.ErrNoSolution)
	assert.Equal(t, engine.ReasonUnresolvable, engine.NoSolutionReason(err))

	var ce *engine.ComputationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "double_accel_A", ce.Edge)
	assert.Equal(t, 1, ce.Index)
	assert.ErrorIs(t, err, relations.ErrDomain)
}

func TestSimple_Solve(t *testing.T) {
	reg, err := NewSimple()
	require.NoError(t, err)

	trace, err := newResolver().Solve(context.Background(), reg, engine.Request{
		Target:   SimpleTheta,
		Seeds:    SimpleInputs(),
		MinIndex: 10,
	})
	require.NoError(t, err)

	theta := trace.Values[SimpleTheta]
	require.Len(t, theta, 11)
	// Released off upright, the pendulum falls away from it.
	assert.Greater(t, theta[10], theta[0])
}

func TestFrames(t *testing.T) {
	values := map[string][]float64{
		ThetaA:  {0, math.Pi / 2},
		ThetaB:  {0, 0, 1},
		LengthA: {2},
		Step:    {0.5},
	}

	frames, err := Frames(values, FrameSpec{})
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, Frame{Index: 0, Time: 0, X1: 0, Y1: -2, X2: 0, Y2: -3}, frames[0])
	assert.Equal(t, 1, frames[1].Index)
	assert.Equal(t, 0.5, frames[1].Time)
	assert.InDelta(t, 2, frames[1].X1, 1e-12)
	assert.InDelta(t, 0, frames[1].Y1, 1e-12)
	assert.InDelta(t, 2, frames[1].X2, 1e-12)
	assert.InDelta(t, -1, frames[1].Y2, 1e-12)
}

func TestFrames_MissingAngles(t *testing.T) {
	_, err := Frames(map[string][]float64{ThetaA: {0}}, FrameSpec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ThetaB)
}

func TestFrames_FreeSpec(t *testing.T) {
	values := map[string][]float64{
		FreeThetaA: {0},
		FreeThetaB: {0},
		FreeRA:     {1},
		FreeRB:     {3},
	}
	frames, err := Frames(values, FreeFrameSpec)
	require.NoError(t, err)
	assert.Equal(t, -4.0, frames[0].Y2)
}
