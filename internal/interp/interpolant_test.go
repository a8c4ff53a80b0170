package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridalign/gridalign/internal/errors"
)

func TestExactnessAtSamples(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	open := []float64{0, 1, 4, 9, 16, 25}
	closed := []float64{0, 1, 4, 2, 1, 0} // equal endpoints for periodic methods

	tests := []struct {
		method Method
		ys     []float64
	}{
		{Linear, open},
		{Polynomial, open},
		{CubicSpline, open},
		{AkimaSpline, open},
		{Steffen, open},
		{PeriodicCubicSpline, closed},
		{PeriodicAkimaSpline, closed},
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			it, err := New(xs, tt.ys, tt.method)
			require.NoError(t, err)
			for i, x := range xs {
				got, err := it.Evaluate(x)
				require.NoError(t, err)
				assert.InDelta(t, tt.ys[i], got, 1e-9, "at x=%g", x)
			}
		})
	}
}

func TestTranslateIsPureCoordinateShift(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0, 2, 1, 3, 5, 4}

	before, err := New(xs, ys, Steffen)
	require.NoError(t, err)
	it, err := New(xs, ys, Steffen)
	require.NoError(t, err)

	const dx, dy = 10.0, 2.5
	it.Translate(dx, dy)

	lower, err := it.DomainLower()
	require.NoError(t, err)
	upper, err := it.DomainUpper()
	require.NoError(t, err)
	assert.Equal(t, xs[0]+dx, lower)
	assert.Equal(t, xs[len(xs)-1]+dx, upper)

	for x := 0.0; x <= 5.0; x += 0.25 {
		want, err := before.Evaluate(x)
		require.NoError(t, err)
		got, err := it.Evaluate(x + dx)
		require.NoError(t, err)
		assert.InDelta(t, want+dy, got, 1e-9, "at x=%g", x)
	}
}

func TestEvaluateOutsideDomain(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 1, 0, 1, 0}

	it, err := New(xs, ys, CubicSpline)
	require.NoError(t, err)

	_, err = it.Evaluate(-0.5)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindOutOfDomain))

	_, err = it.Evaluate(4.5)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindOutOfDomain))
}

func TestPeriodicContinuation(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 1, 0, -1, 0}

	it, err := New(xs, ys, PeriodicCubicSpline)
	require.NoError(t, err)

	// Any x is valid, and the curve repeats with period 4.
	for x := -6.0; x <= 10.0; x += 0.5 {
		v, err := it.Evaluate(x)
		require.NoError(t, err, "at x=%g", x)
		vp, err := it.Evaluate(x + 4)
		require.NoError(t, err)
		assert.InDelta(t, v, vp, 1e-9, "period at x=%g", x)
	}
}

func TestPeriodicEndpointMismatch(t *testing.T) {
	_, err := New([]float64{0, 1, 2}, []float64{0, 1, 2}, PeriodicCubicSpline)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestEmptyPlaceholder(t *testing.T) {
	var it Interpolant

	_, err := it.Evaluate(0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotInitialized))

	_, err = it.DomainLower()
	assert.True(t, errors.IsKind(err, errors.KindNotInitialized))

	_, err = it.Integral(0, 1)
	assert.True(t, errors.IsKind(err, errors.KindNotInitialized))

	err = it.RestrictDomain(0, 1)
	assert.True(t, errors.IsKind(err, errors.KindNotInitialized))
}

func TestTooFewSamples(t *testing.T) {
	tests := []struct {
		method Method
		n      int
	}{
		{Linear, 1},
		{Polynomial, 2},
		{CubicSpline, 2},
		{AkimaSpline, 4},
		{Steffen, 1},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			xs := make([]float64, tt.n)
			ys := make([]float64, tt.n)
			for i := range xs {
				xs[i] = float64(i)
			}
			_, err := New(xs, ys, tt.method)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
		})
	}
}

func TestDuplicateAbscissaCollapse(t *testing.T) {
	// Last write wins, as with map insertion.
	it, err := New([]float64{0, 1, 1, 2}, []float64{0, 5, 7, 2}, Linear)
	require.NoError(t, err)
	assert.Equal(t, 3, it.Len())

	got, err := it.Evaluate(1)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, got, 1e-12)
}

func TestDerivativeLinear(t *testing.T) {
	it, err := New([]float64{0, 1, 2}, []float64{0, 2, 4}, Linear)
	require.NoError(t, err)

	d, err := it.Derivative(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)

	// Translation does not change the derivative.
	it.Translate(3, 10)
	d, err = it.Derivative(3.5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, d, 1e-12)
}

func TestSecondDerivativeOnStraightLine(t *testing.T) {
	it, err := New([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7}, Steffen)
	require.NoError(t, err)

	for _, x := range []float64{0, 0.5, 1.5, 3} {
		d2, err := it.SecondDerivative(x)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d2, 1e-6, "at x=%g", x)
	}
}

func TestIntegral(t *testing.T) {
	// y = 2x over [0, 2]: integral is x^2.
	it, err := New([]float64{0, 1, 2}, []float64{0, 2, 4}, Linear)
	require.NoError(t, err)

	v, err := it.Integral(0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	v, err = it.Integral(0.5, 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.5*1.5-0.5*0.5, v, 1e-9)

	// A constant y-shift contributes linearly to the area.
	it.Translate(0, 3)
	v, err = it.Integral(0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.0+3*2, v, 1e-9)

	_, err = it.Integral(1.5, 0.5)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	_, err = it.Integral(-1, 2)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindOutOfDomain))
}

func TestPeriodicIntegral(t *testing.T) {
	// One full period of a sawtooth-ish closed curve.
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 2, 4, 2, 0}
	it, err := New(xs, ys, PeriodicCubicSpline)
	require.NoError(t, err)

	one, err := it.Integral(0, 4)
	require.NoError(t, err)
	three, err := it.Integral(0, 12)
	require.NoError(t, err)
	assert.InDelta(t, 3*one, three, 1e-8)

	// Shift-invariance over whole periods.
	shifted, err := it.Integral(-4, 0)
	require.NoError(t, err)
	assert.InDelta(t, one, shifted, 1e-8)
}

func TestRestrictDomain(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := []float64{0, 2, 1, 3, 5, 4}
	it, err := New(xs, ys, Steffen)
	require.NoError(t, err)

	wantBoundary, err := it.Evaluate(1.5)
	require.NoError(t, err)

	require.NoError(t, it.RestrictDomain(1.5, 3.5))

	lower, err := it.DomainLower()
	require.NoError(t, err)
	upper, err := it.DomainUpper()
	require.NoError(t, err)
	assert.Equal(t, 1.5, lower)
	assert.Equal(t, 3.5, upper)

	// Interior samples keep their original ordinates; boundary samples take
	// the previously evaluated values.
	got, err := it.Evaluate(2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
	got, err = it.Evaluate(1.5)
	require.NoError(t, err)
	assert.InDelta(t, wantBoundary, got, 1e-9)

	_, err = it.Evaluate(1.0)
	assert.True(t, errors.IsKind(err, errors.KindOutOfDomain))
}

func TestRestrictDomainNoOpAndErrors(t *testing.T) {
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 1, 4, 9}
	it, err := New(xs, ys, Steffen)
	require.NoError(t, err)

	before, err := it.Evaluate(1.25)
	require.NoError(t, err)

	// Restricting to the current domain exactly is a silent no-op.
	require.NoError(t, it.RestrictDomain(0, 3))
	after, err := it.Evaluate(1.25)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// A larger-than-current interval is an invalid argument.
	err = it.RestrictDomain(-1, 3)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))

	err = it.RestrictDomain(0, 4)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestPolynomialReproducesQuadratic(t *testing.T) {
	// Three samples of x^2 determine the polynomial exactly everywhere.
	it, err := New([]float64{0, 1, 3}, []float64{0, 1, 9}, Polynomial)
	require.NoError(t, err)

	for x := 0.0; x <= 3.0; x += 0.3 {
		v, err := it.Evaluate(x)
		require.NoError(t, err)
		assert.InDelta(t, x*x, v, 1e-9, "value at x=%g", x)

		d, err := it.Derivative(x)
		require.NoError(t, err)
		assert.InDelta(t, 2*x, d, 1e-9, "derivative at x=%g", x)
	}

	v, err := it.Integral(0, 3)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, v, 1e-9)
}

func TestMethodMinSamplesOrdering(t *testing.T) {
	// Promotion order is the declaration order, periodic variants last.
	assert.True(t, Linear < Polynomial)
	assert.True(t, Polynomial < CubicSpline)
	assert.True(t, CubicSpline < AkimaSpline)
	assert.True(t, AkimaSpline < Steffen)
	assert.True(t, Steffen < PeriodicCubicSpline)
	assert.True(t, PeriodicCubicSpline < PeriodicAkimaSpline)

	assert.Equal(t, 2, Linear.MinSamples())
	assert.Equal(t, 2, Steffen.MinSamples())
	assert.Equal(t, 5, AkimaSpline.MinSamples())
}
