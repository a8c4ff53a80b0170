package solve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridalign/gridalign/internal/errors"
)

func quadratic(center []float64) Objective {
	return func(x []float64) (float64, error) {
		sum := 0.0
		for i := range x {
			d := x[i] - center[i]
			sum += d * d
		}
		return sum, nil
	}
}

func TestNewNelderMeadValidation(t *testing.T) {
	_, err := NewNelderMead(0, Config{})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	nm, err := NewNelderMead(2, Config{})
	require.NoError(t, err)
	require.NotNil(t, nm)
}

func TestSolveFindsInteriorMinimum(t *testing.T) {
	nm, err := NewNelderMead(2, Config{})
	require.NoError(t, err)
	require.NoError(t, nm.SetBounds([][2]float64{{-10, 10}, {-10, 10}}))
	nm.SetObjective(quadratic([]float64{2, -3}))

	result, err := nm.Solve(context.Background(), []float64{8, 8})
	require.NoError(t, err)
	assert.Equal(t, StatusConverged, result.Status)
	assert.InDelta(t, 2.0, result.Point[0], 1e-3)
	assert.InDelta(t, -3.0, result.Point[1], 1e-3)
	assert.InDelta(t, 0.0, result.Value, 1e-5)
}

func TestSolveClampsToBounds(t *testing.T) {
	// The unconstrained minimum sits at -5, outside the box; the solver must
	// settle on the nearest feasible point.
	nm, err := NewNelderMead(1, Config{})
	require.NoError(t, err)
	require.NoError(t, nm.SetBounds([][2]float64{{0, 10}}))
	nm.SetObjective(quadratic([]float64{-5}))

	result, err := nm.Solve(context.Background(), []float64{7})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Point[0], 0.0)
	assert.LessOrEqual(t, result.Point[0], 10.0)
	assert.InDelta(t, 0.0, result.Point[0], 1e-2)
}

func TestSolveClampsInitialPoint(t *testing.T) {
	nm, err := NewNelderMead(1, Config{})
	require.NoError(t, err)
	require.NoError(t, nm.SetBounds([][2]float64{{0, 1}}))
	nm.SetObjective(quadratic([]float64{0.5}))

	// Starting far outside the box still yields the interior minimum.
	result, err := nm.Solve(context.Background(), []float64{1e6})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.Point[0], 1e-3)
}

func TestSetBoundsErrors(t *testing.T) {
	nm, err := NewNelderMead(2, Config{})
	require.NoError(t, err)

	err = nm.SetBounds([][2]float64{{0, 1}})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvariant))

	err = nm.SetBounds([][2]float64{{0, 1}, {5, 2}})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestSolvePreconditions(t *testing.T) {
	nm, err := NewNelderMead(1, Config{})
	require.NoError(t, err)

	_, err = nm.Solve(context.Background(), []float64{0})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvariant))

	require.NoError(t, nm.SetBounds([][2]float64{{0, 1}}))
	_, err = nm.Solve(context.Background(), []float64{0})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvariant))

	nm.SetObjective(quadratic([]float64{0}))
	_, err = nm.Solve(context.Background(), []float64{0, 0})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvariant))
}

func TestSolveObjectiveErrorAborts(t *testing.T) {
	nm, err := NewNelderMead(1, Config{})
	require.NoError(t, err)
	require.NoError(t, nm.SetBounds([][2]float64{{0, 1}}))

	boom := fmt.Errorf("sensor offline")
	nm.SetObjective(func(x []float64) (float64, error) {
		return 0, boom
	})

	_, err = nm.Solve(context.Background(), []float64{0.5})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSolveHonorsCancelledContext(t *testing.T) {
	nm, err := NewNelderMead(1, Config{})
	require.NoError(t, err)
	require.NoError(t, nm.SetBounds([][2]float64{{0, 1}}))
	nm.SetObjective(quadratic([]float64{0.5}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = nm.Solve(ctx, []float64{0.1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "converged", StatusConverged.String())
	assert.Equal(t, "limit reached", StatusLimitReached.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
