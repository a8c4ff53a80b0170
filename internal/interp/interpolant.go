// Package interp turns sparse, irregularly sampled time series into
// continuous, differentiable, integrable functions.
//
// An Interpolant owns a strictly increasing abscissa, a matching ordinate, an
// interpolation method and a 2-D translation offset applied at evaluation time
// without refitting. Two interpolants can be combined algebraically into a
// fresh interpolant over the union of their domains (see Combine).
package interp

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/gridalign/gridalign/internal/errors"
	"github.com/gridalign/gridalign/internal/timeseries"
)

const component = "interp"

// Interpolant is a continuous function fitted to discrete samples. The zero
// value is an empty placeholder; every operation on it fails with a
// not-initialized error until it is assigned a constructed interpolant.
type Interpolant struct {
	method Method
	xs     []float64
	ys     []float64
	pred   predictor

	// Translation offsets, applied post hoc: Evaluate(x) is the fitted curve
	// at x-xOff, plus yOff.
	xOff float64
	yOff float64
}

// New constructs an interpolant from parallel abscissa/ordinate slices.
// Duplicate abscissa values collapse silently, last write wins. Fails when
// fewer samples remain than the method requires, or when a periodic method is
// given mismatched endpoint ordinates.
func New(xs, ys []float64, method Method) (*Interpolant, error) {
	const op = "New"
	if !method.valid() {
		return nil, errors.Newf(errors.KindInvalidInput, "unknown method %d", int(method)).
			WithComponent(component).WithOperation(op)
	}
	if len(xs) != len(ys) {
		return nil, errors.Newf(errors.KindInvalidInput,
			"abscissa and ordinate lengths differ: %d vs %d", len(xs), len(ys)).
			WithComponent(component).WithOperation(op)
	}

	cx, cy := collapse(xs, ys)
	if len(cx) < method.MinSamples() {
		return nil, errors.Newf(errors.KindInvalidInput,
			"%s needs at least %d samples, got %d", method, method.MinSamples(), len(cx)).
			WithComponent(component).WithOperation(op)
	}
	if method.Periodic() && cy[0] != cy[len(cy)-1] {
		return nil, errors.Newf(errors.KindInvalidInput,
			"%s requires equal endpoint ordinates, got %g and %g",
			method, cy[0], cy[len(cy)-1]).
			WithComponent(component).WithOperation(op)
	}

	pred := newPredictor(method)
	if err := pred.Fit(cx, cy); err != nil {
		return nil, errors.Wrapf(err, errors.KindInvalidInput, "fitting %s", method).
			WithComponent(component).WithOperation(op)
	}

	return &Interpolant{method: method, xs: cx, ys: cy, pred: pred}, nil
}

// NewFromSeries constructs an interpolant over a sampled time series.
func NewFromSeries(s *timeseries.Series, method Method) (*Interpolant, error) {
	return New(s.FloatTimes(), s.Values(), method)
}

// NewFromFile constructs an interpolant from a two-column series file.
func NewFromFile(path string, method Method) (*Interpolant, error) {
	s, err := timeseries.LoadSeries(path)
	if err != nil {
		return nil, err
	}
	return NewFromSeries(s, method)
}

// collapse sorts sample pairs by abscissa and drops duplicate abscissa values,
// keeping the last occurrence, mirroring map-insertion semantics.
func collapse(xs, ys []float64) ([]float64, []float64) {
	type pair struct {
		x, y float64
		ord  int
	}
	pairs := make([]pair, len(xs))
	for i := range xs {
		pairs[i] = pair{xs[i], ys[i], i}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })

	cx := make([]float64, 0, len(pairs))
	cy := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if len(cx) > 0 && cx[len(cx)-1] == p.x {
			cy[len(cy)-1] = p.y
			continue
		}
		cx = append(cx, p.x)
		cy = append(cy, p.y)
	}
	return cx, cy
}

// Method returns the interpolation method.
func (it *Interpolant) Method() Method {
	return it.method
}

// Len returns the number of fitted samples, zero for a placeholder.
func (it *Interpolant) Len() int {
	if it == nil {
		return 0
	}
	return len(it.xs)
}

func (it *Interpolant) initialized() bool {
	return it != nil && it.pred != nil
}

func errNotInitialized(op string) error {
	return errors.New(errors.KindNotInitialized, "interpolant is an empty placeholder").
		WithComponent(component).WithOperation(op)
}

func (it *Interpolant) errOutOfDomain(op string, x float64) error {
	return errors.Newf(errors.KindOutOfDomain,
		"x=%g outside domain [%g, %g]", x, it.xs[0]+it.xOff, it.xs[len(it.xs)-1]+it.xOff).
		WithComponent(component).WithOperation(op)
}

// reduce maps x into the fitted (untranslated) coordinate system, wrapping
// periodically when the method allows it. ok is false when x falls outside a
// non-periodic domain.
func (it *Interpolant) reduce(x float64) (u float64, ok bool) {
	u = x - it.xOff
	lo, hi := it.xs[0], it.xs[len(it.xs)-1]
	if it.method.Periodic() {
		return it.wrap(u), true
	}
	if u < lo || u > hi {
		return u, false
	}
	return u, true
}

// wrap reduces u into [lo, hi] by periodic continuation.
func (it *Interpolant) wrap(u float64) float64 {
	lo, hi := it.xs[0], it.xs[len(it.xs)-1]
	period := hi - lo
	w := math.Mod(u-lo, period)
	if w < 0 {
		w += period
	}
	return lo + w
}

// Evaluate returns the interpolated value plus the y-offset at x-xOffset.
func (it *Interpolant) Evaluate(x float64) (float64, error) {
	const op = "Evaluate"
	if !it.initialized() {
		return 0, errNotInitialized(op)
	}
	u, ok := it.reduce(x)
	if !ok {
		return 0, it.errOutOfDomain(op, x)
	}
	return it.pred.Predict(u) + it.yOff, nil
}

// Derivative returns the first derivative of the interpolated curve at x.
// The translation offsets do not change the derivative.
func (it *Interpolant) Derivative(x float64) (float64, error) {
	const op = "Derivative"
	if !it.initialized() {
		return 0, errNotInitialized(op)
	}
	u, ok := it.reduce(x)
	if !ok {
		return 0, it.errOutOfDomain(op, x)
	}
	return it.pred.PredictDerivative(u), nil
}

// SecondDerivative returns the second derivative at x, obtained by finite
// differencing the backend's first derivative. One-sided formulas are used at
// the domain edges so no point outside the fitted range is ever evaluated.
func (it *Interpolant) SecondDerivative(x float64) (float64, error) {
	const op = "SecondDerivative"
	if !it.initialized() {
		return 0, errNotInitialized(op)
	}
	u, ok := it.reduce(x)
	if !ok {
		return 0, it.errOutOfDomain(op, x)
	}

	lo, hi := it.xs[0], it.xs[len(it.xs)-1]
	n := len(it.xs)
	h := 1e-4 * (hi - lo) / float64(n-1)

	settings := &fd.Settings{Step: h, Formula: fd.Central}
	if !it.method.Periodic() {
		if u-h < lo {
			settings.Formula = fd.Forward
		} else if u+h > hi {
			settings.Formula = fd.Backward
		}
	}
	deriv := func(v float64) float64 {
		if it.method.Periodic() {
			v = it.wrap(v)
		}
		return it.pred.PredictDerivative(v)
	}
	return fd.Derivative(deriv, u, settings), nil
}

// DomainLower returns the lower domain bound including the x-offset.
func (it *Interpolant) DomainLower() (float64, error) {
	if !it.initialized() {
		return 0, errNotInitialized("DomainLower")
	}
	return it.xs[0] + it.xOff, nil
}

// DomainUpper returns the upper domain bound including the x-offset.
func (it *Interpolant) DomainUpper() (float64, error) {
	if !it.initialized() {
		return 0, errNotInitialized("DomainUpper")
	}
	return it.xs[len(it.xs)-1] + it.xOff, nil
}

// Translate shifts the curve by (dx, dy). The shift is stored and applied at
// evaluation time; the fitted coefficients are untouched.
func (it *Interpolant) Translate(dx, dy float64) {
	it.xOff += dx
	it.yOff += dy
}

// Integral returns the definite integral of the translated curve over [a, b].
// The constant y-shift contributes yOffset*(b-a). For non-periodic methods
// both bounds must lie inside the domain.
func (it *Interpolant) Integral(a, b float64) (float64, error) {
	const op = "Integral"
	if !it.initialized() {
		return 0, errNotInitialized(op)
	}
	if b < a {
		return 0, errors.Newf(errors.KindInvalidInput, "integral bounds reversed: [%g, %g]", a, b).
			WithComponent(component).WithOperation(op)
	}

	ua := a - it.xOff
	ub := b - it.xOff
	lo, hi := it.xs[0], it.xs[len(it.xs)-1]

	var base float64
	if it.method.Periodic() {
		base = it.antiderivative(ub) - it.antiderivative(ua)
	} else {
		if ua < lo || ub > hi {
			if ua < lo {
				return 0, it.errOutOfDomain(op, a)
			}
			return 0, it.errOutOfDomain(op, b)
		}
		base = it.baseIntegral(ua, ub)
	}
	return base + it.yOff*(b-a), nil
}

// baseIntegral integrates the fitted curve between lo and hi (untranslated
// coordinates, both inside the fitted range), splitting at interior knots so
// each piece is a single polynomial segment for the Gauss-Legendre rule.
func (it *Interpolant) baseIntegral(lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	// 5 Legendre nodes are exact for every piecewise-cubic segment. The
	// global polynomial method may exceed degree 9, so scale the rule with
	// the sample count.
	nodes := 5
	if it.method == Polynomial {
		if n := len(it.xs)/2 + 1; n > nodes {
			nodes = n
		}
	}

	f := func(x float64) float64 { return it.pred.Predict(x) }
	total := 0.0
	start := lo
	for _, knot := range it.xs {
		if knot <= start {
			continue
		}
		if knot >= hi {
			break
		}
		total += quad.Fixed(f, start, knot, nodes, quad.Legendre{}, 0)
		start = knot
	}
	total += quad.Fixed(f, start, hi, nodes, quad.Legendre{}, 0)
	return total
}

// antiderivative returns the integral of the periodically continued curve
// from the first fitted sample to u.
func (it *Interpolant) antiderivative(u float64) float64 {
	lo, hi := it.xs[0], it.xs[len(it.xs)-1]
	period := hi - lo
	whole := math.Floor((u - lo) / period)
	return whole*it.baseIntegral(lo, hi) + it.baseIntegral(lo, it.wrap(u))
}

// RestrictDomain narrows the interpolant to [newLow, newHigh], keeping the
// interior samples plus two newly evaluated boundary samples, then refits.
// Restricting to exactly the current domain is a no-op; a requested interval
// not strictly contained in the current domain is an invalid-argument error.
func (it *Interpolant) RestrictDomain(newLow, newHigh float64) error {
	const op = "RestrictDomain"
	if !it.initialized() {
		return errNotInitialized(op)
	}
	lower := it.xs[0] + it.xOff
	upper := it.xs[len(it.xs)-1] + it.xOff

	if newLow == lower && newHigh == upper {
		return nil
	}
	if newLow < lower || newHigh > upper || newLow >= newHigh {
		return errors.Newf(errors.KindInvalidInput,
			"[%g, %g] is not a sub-interval of [%g, %g]", newLow, newHigh, lower, upper).
			WithComponent(component).WithOperation(op)
	}

	yLow, err := it.Evaluate(newLow)
	if err != nil {
		return err
	}
	yHigh, err := it.Evaluate(newHigh)
	if err != nil {
		return err
	}

	nxs := []float64{newLow}
	nys := []float64{yLow}
	for i, x := range it.xs {
		shifted := x + it.xOff
		if shifted > newLow && shifted < newHigh {
			nxs = append(nxs, shifted)
			nys = append(nys, it.ys[i]+it.yOff)
		}
	}
	nxs = append(nxs, newHigh)
	nys = append(nys, yHigh)

	replacement, err := New(nxs, nys, it.method)
	if err != nil {
		return err
	}
	*it = *replacement
	return nil
}
