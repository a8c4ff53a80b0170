package interp

import (
	"github.com/gridalign/gridalign/internal/errors"
)

// newtonPolynomial is a global interpolating polynomial in Newton form,
// fitted by divided differences. gonum's interp package only ships piecewise
// predictors, so the single-polynomial method carries its own backend.
type newtonPolynomial struct {
	xs     []float64
	coeffs []float64
}

// Fit computes the divided-difference coefficients for the given samples.
// The abscissa must be strictly increasing.
func (p *newtonPolynomial) Fit(xs, ys []float64) error {
	n := len(xs)
	if n != len(ys) {
		return errors.Newf(errors.KindInvalidInput,
			"abscissa and ordinate lengths differ: %d vs %d", n, len(ys)).
			WithComponent("interp").WithOperation("newtonPolynomial.Fit")
	}
	if n < 2 {
		return errors.New(errors.KindInvalidInput, "too few samples for polynomial fit").
			WithComponent("interp").WithOperation("newtonPolynomial.Fit")
	}

	p.xs = append(p.xs[:0], xs...)
	p.coeffs = append(p.coeffs[:0], ys...)

	// Divided-difference table, computed in place column by column.
	for j := 1; j < n; j++ {
		for i := n - 1; i >= j; i-- {
			p.coeffs[i] = (p.coeffs[i] - p.coeffs[i-1]) / (p.xs[i] - p.xs[i-j])
		}
	}
	return nil
}

// Predict evaluates the polynomial at x by Horner's scheme on the Newton form.
func (p *newtonPolynomial) Predict(x float64) float64 {
	n := len(p.coeffs)
	v := p.coeffs[n-1]
	for i := n - 2; i >= 0; i-- {
		v = v*(x-p.xs[i]) + p.coeffs[i]
	}
	return v
}

// PredictDerivative evaluates the first derivative at x. The value and the
// derivative recurrences are carried together through the Horner loop.
func (p *newtonPolynomial) PredictDerivative(x float64) float64 {
	n := len(p.coeffs)
	v := p.coeffs[n-1]
	d := 0.0
	for i := n - 2; i >= 0; i-- {
		d = d*(x-p.xs[i]) + v
		v = v*(x-p.xs[i]) + p.coeffs[i]
	}
	return d
}
