package interp

import (
	"sort"

	"github.com/gridalign/gridalign/internal/errors"
)

// Op is an algebraic operation combining two interpolants pointwise at the
// unioned sample grid.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

func (o Op) apply(a, b float64) float64 {
	switch o {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		return 0
	}
}

// Combine produces a brand-new interpolant over the union of the operands'
// offset-adjusted domains. At each unioned abscissa value the ordinate is the
// operand value where only one operand is defined, and op applied to both
// values where they overlap. The result uses the more advanced of the two
// methods (periodic variants always win) and owns freshly solved coefficients;
// it shares no state with its operands.
//
// Away from the unioned grid points the combined curve is the fresh fit, not
// the pointwise combination function. For non-additive methods such as Akima
// or Steffen the two generally differ between grid points.
//
// Known limitation: when only one operand is periodic the promoted method is
// still periodic, so the combination fails unless the unioned endpoint
// ordinates happen to match. The promotion rule is kept as designed rather
// than special-cased.
func Combine(a, b *Interpolant, op Op) (*Interpolant, error) {
	const opName = "Combine"
	if !a.initialized() || !b.initialized() {
		return nil, errNotInitialized(opName)
	}

	xs := unionAbscissae(a, b)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		va, errA := a.Evaluate(x)
		vb, errB := b.Evaluate(x)
		switch {
		case errA == nil && errB == nil:
			ys[i] = op.apply(va, vb)
		case errA == nil:
			ys[i] = va
		case errB == nil:
			ys[i] = vb
		default:
			// Every unioned x comes from one operand's domain.
			return nil, errors.Newf(errors.KindInvariant,
				"union abscissa %g outside both operand domains", x).
				WithComponent(component).WithOperation(opName)
		}
	}

	return New(xs, ys, promote(a.method, b.method))
}

// unionAbscissae merges the offset-adjusted abscissae of both operands into a
// sorted, deduplicated slice.
func unionAbscissae(a, b *Interpolant) []float64 {
	merged := make([]float64, 0, len(a.xs)+len(b.xs))
	for _, x := range a.xs {
		merged = append(merged, x+a.xOff)
	}
	for _, x := range b.xs {
		merged = append(merged, x+b.xOff)
	}
	sort.Float64s(merged)

	out := merged[:0]
	for i, x := range merged {
		if i > 0 && x == out[len(out)-1] {
			continue
		}
		out = append(out, x)
	}
	return out
}
