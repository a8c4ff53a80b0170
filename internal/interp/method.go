package interp

import (
	gonuminterp "gonum.org/v1/gonum/interp"
)

// Method selects the interpolation scheme used by an Interpolant.
//
// The declaration order is the promotion order used when two interpolants are
// combined: the method with the higher ordinal wins, and periodic variants
// always outrank non-periodic ones so a combination involving a periodic
// operand stays periodic.
type Method int

const (
	// Linear connects consecutive samples with straight segments.
	Linear Method = iota
	// Polynomial fits a single global polynomial through all samples.
	Polynomial
	// CubicSpline is a natural cubic spline.
	CubicSpline
	// AkimaSpline is Akima's locally weighted cubic spline.
	AkimaSpline
	// Steffen is a monotonicity-preserving cubic (no overshoot between
	// samples), the default method.
	Steffen
	// PeriodicCubicSpline is CubicSpline with evaluation extended everywhere
	// by periodic continuation.
	PeriodicCubicSpline
	// PeriodicAkimaSpline is AkimaSpline with periodic continuation.
	PeriodicAkimaSpline
)

// DefaultMethod is used when no method is given at construction.
const DefaultMethod = Steffen

func (m Method) String() string {
	switch m {
	case Linear:
		return "linear"
	case Polynomial:
		return "polynomial"
	case CubicSpline:
		return "cubic-spline"
	case AkimaSpline:
		return "akima-spline"
	case Steffen:
		return "steffen"
	case PeriodicCubicSpline:
		return "periodic-cubic-spline"
	case PeriodicAkimaSpline:
		return "periodic-akima-spline"
	default:
		return "unknown"
	}
}

// Periodic reports whether the method extrapolates by periodic continuation.
func (m Method) Periodic() bool {
	return m == PeriodicCubicSpline || m == PeriodicAkimaSpline
}

// MinSamples returns the minimum number of samples the method requires.
func (m Method) MinSamples() int {
	switch m {
	case Linear, Steffen:
		return 2
	case Polynomial, CubicSpline, PeriodicCubicSpline:
		return 3
	case AkimaSpline, PeriodicAkimaSpline:
		return 5
	default:
		return 2
	}
}

// valid reports whether m is one of the declared methods.
func (m Method) valid() bool {
	return m >= Linear && m <= PeriodicAkimaSpline
}

// promote returns the more advanced of the two methods.
func promote(a, b Method) Method {
	if a >= b {
		return a
	}
	return b
}

// predictor is the fitted per-method state backing an Interpolant: a solved
// coefficient set that can be evaluated and differentiated anywhere in the
// fitted abscissa range.
type predictor interface {
	gonuminterp.FittablePredictor
	PredictDerivative(x float64) float64
}

// newPredictor allocates the unfitted backend for a method. Periodic variants
// share the backend of their base method; periodic continuation is handled by
// the Interpolant through argument reduction.
func newPredictor(m Method) predictor {
	switch m {
	case Linear:
		return &gonuminterp.PiecewiseLinear{}
	case Polynomial:
		return &newtonPolynomial{}
	case CubicSpline, PeriodicCubicSpline:
		return &gonuminterp.NaturalCubic{}
	case AkimaSpline, PeriodicAkimaSpline:
		return &gonuminterp.AkimaSpline{}
	case Steffen:
		return &gonuminterp.FritschButland{}
	default:
		return &gonuminterp.FritschButland{}
	}
}
