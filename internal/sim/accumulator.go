package sim

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/gridalign/gridalign/internal/errors"
	"github.com/gridalign/gridalign/internal/interp"
	"github.com/gridalign/gridalign/internal/metrics"
)

// defaultSpacing is assumed when the timeline holds a single sample and the
// local spacing cannot be derived.
const defaultSpacing int64 = 3600

// Accumulator reduces a candidate start-time assignment to a single scalar
// cost. It is the exclusive owner of the shared production sample axis, the
// per-interval production energy, and the running consumption accumulation;
// consumers never touch this state, they only send value messages, and the
// single goroutine driving an evaluation cycle applies the replies one at a
// time. The three vectors always have equal length.
type Accumulator struct {
	times      []int64
	production []float64
	accum      []float64

	logger *zap.Logger
	mets   *metrics.Metrics
}

// NewAccumulator creates an accumulator over the given initial, strictly
// sorted production sample axis.
func NewAccumulator(sampleTimes []int64, logger *zap.Logger, mets *metrics.Metrics) (*Accumulator, error) {
	if len(sampleTimes) == 0 {
		return nil, errors.New(errors.KindInvalidInput, "empty production sample axis").
			WithComponent("sim").WithOperation("NewAccumulator")
	}
	for i := 1; i < len(sampleTimes); i++ {
		if sampleTimes[i] <= sampleTimes[i-1] {
			return nil, errors.Newf(errors.KindInvalidInput,
				"production sample times not strictly increasing at index %d", i).
				WithComponent("sim").WithOperation("NewAccumulator")
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if mets == nil {
		mets = metrics.Nop()
	}
	a := &Accumulator{
		times:      append([]int64(nil), sampleTimes...),
		production: make([]float64, len(sampleTimes)),
		accum:      make([]float64, len(sampleTimes)),
		logger:     logger.Named("accumulator"),
		mets:       mets,
	}
	mets.TimelineSamples.Set(float64(len(a.times)))
	return a, nil
}

// Len returns the current number of production samples.
func (a *Accumulator) Len() int {
	return len(a.times)
}

// SampleTimes returns a copy of the shared sample axis. Consumers compute
// against the copy, never against the owned slice.
func (a *Accumulator) SampleTimes() []int64 {
	return append([]int64(nil), a.times...)
}

// SetProductionValues converts a cumulative production series into
// per-interval deltas. The first interval's value is the cumulative
// production up to the first sample. A length mismatch with the current
// sample axis is a programming error.
func (a *Accumulator) SetProductionValues(cumulative []float64) error {
	if len(cumulative) != len(a.times) {
		return errors.Newf(errors.KindInvariant,
			"%d production values for %d samples", len(cumulative), len(a.times)).
			WithComponent("sim").WithOperation("SetProductionValues")
	}
	a.production[0] = cumulative[0]
	for i := 1; i < len(cumulative); i++ {
		a.production[i] = cumulative[i] - cumulative[i-1]
	}
	return nil
}

// Reset zero-fills the accumulation vector to the current sample count. The
// count can only grow between cycles, never shrink.
func (a *Accumulator) Reset() {
	if len(a.accum) != len(a.times) {
		a.accum = make([]float64, len(a.times))
		return
	}
	for i := range a.accum {
		a.accum[i] = 0
	}
}

// Accumulate element-wise adds one consumer's consumption vector. A length
// mismatch means the vector was computed against a different sample axis,
// which is a bug, not recoverable input.
func (a *Accumulator) Accumulate(consumption []float64) error {
	if len(consumption) != len(a.accum) {
		return errors.Newf(errors.KindInvariant,
			"consumption vector length %d does not match accumulator length %d",
			len(consumption), len(a.accum)).
			WithComponent("sim").WithOperation("Accumulate")
	}
	floats.Add(a.accum, consumption)
	return nil
}

// ExtendTimeAxis grows the sample axis, never shrinking it, so that it covers
// the given consumer coverage interval. New samples are spaced at the same
// delta as the adjacent existing interval and carry zero production. The
// governing invariant going backward is that no prepended timestamp is ever
// negative: the step that would cross zero is clamped to exactly zero.
// Calling with an already covered interval is a no-op.
func (a *Accumulator) ExtendTimeAxis(cov Interval) {
	before := len(a.times)

	spacing := a.leadingSpacing()
	for a.times[0] > cov.Lower {
		next := a.times[0] - spacing
		if next < 0 {
			next = 0
		}
		if next >= a.times[0] {
			break
		}
		a.times = append([]int64{next}, a.times...)
		a.production = append([]float64{0}, a.production...)
		a.accum = append([]float64{0}, a.accum...)
		if next == 0 {
			break
		}
	}

	spacing = a.trailingSpacing()
	for a.times[len(a.times)-1] < cov.Upper {
		a.times = append(a.times, a.times[len(a.times)-1]+spacing)
		a.production = append(a.production, 0)
		a.accum = append(a.accum, 0)
	}

	if grown := len(a.times) - before; grown > 0 {
		a.logger.Debug("extended production timeline",
			zap.Int("added_samples", grown),
			zap.Int64("first", a.times[0]),
			zap.Int64("last", a.times[len(a.times)-1]),
		)
		a.mets.TimelineSamples.Set(float64(len(a.times)))
	}
}

func (a *Accumulator) leadingSpacing() int64 {
	if len(a.times) < 2 {
		return defaultSpacing
	}
	return a.times[1] - a.times[0]
}

func (a *Accumulator) trailingSpacing() int64 {
	if len(a.times) < 2 {
		return defaultSpacing
	}
	return a.times[len(a.times)-1] - a.times[len(a.times)-2]
}

// Value reduces the current cycle to the grid-import energy: the definite
// integral, over the full sample axis, of a fresh interpolant through the
// per-interval deficit max(0, consumption-production).
func (a *Accumulator) Value() (float64, error) {
	deficit := make([]float64, len(a.times))
	xs := make([]float64, len(a.times))
	for i := range a.times {
		xs[i] = float64(a.times[i])
		if d := a.accum[i] - a.production[i]; d > 0 {
			deficit[i] = d
		}
	}

	it, err := interp.New(xs, deficit, interp.DefaultMethod)
	if err != nil {
		return 0, errors.Wrap(err, errors.KindInvariant, "building deficit interpolant").
			WithComponent("sim").WithOperation("Value")
	}
	lower, err := it.DomainLower()
	if err != nil {
		return 0, err
	}
	upper, err := it.DomainUpper()
	if err != nil {
		return 0, err
	}
	return it.Integral(lower, upper)
}
