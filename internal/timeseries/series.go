// Package timeseries provides the sampled cumulative-energy series consumed by
// the interpolation engine and the scheduling simulator, along with the CSV
// readers for production profiles, consumption profiles and consumer events.
package timeseries

import (
	"sort"

	"github.com/gridalign/gridalign/internal/errors"
)

// Series is a strictly sorted mapping from unique POSIX-second timestamps to
// cumulative-energy values. Insertion order is irrelevant; key order is the
// abscissa. Setting an existing timestamp overwrites its value.
type Series struct {
	times  []int64
	values []float64
}

// NewSeries returns an empty series.
func NewSeries() *Series {
	return &Series{}
}

// Set inserts or overwrites the value at the given timestamp.
func (s *Series) Set(t int64, v float64) {
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] >= t })
	if i < len(s.times) && s.times[i] == t {
		s.values[i] = v
		return
	}
	s.times = append(s.times, 0)
	s.values = append(s.values, 0)
	copy(s.times[i+1:], s.times[i:])
	copy(s.values[i+1:], s.values[i:])
	s.times[i] = t
	s.values[i] = v
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.times)
}

// At returns the i-th sample in timestamp order.
func (s *Series) At(i int) (int64, float64) {
	return s.times[i], s.values[i]
}

// First returns the earliest sample. The series must not be empty.
func (s *Series) First() (int64, float64) {
	return s.times[0], s.values[0]
}

// Last returns the latest sample. The series must not be empty.
func (s *Series) Last() (int64, float64) {
	return s.times[len(s.times)-1], s.values[len(s.times)-1]
}

// Times returns a copy of the sorted timestamps.
func (s *Series) Times() []int64 {
	return append([]int64(nil), s.times...)
}

// Values returns a copy of the values in timestamp order.
func (s *Series) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// FloatTimes returns the sorted timestamps converted to float64, for use as an
// interpolation abscissa.
func (s *Series) FloatTimes() []float64 {
	xs := make([]float64, len(s.times))
	for i, t := range s.times {
		xs[i] = float64(t)
	}
	return xs
}

// Validate checks that the series holds at least min samples.
func (s *Series) Validate(min int) error {
	if s.Len() < min {
		return errors.Newf(errors.KindInvalidInput,
			"series has %d samples, need at least %d", s.Len(), min).
			WithComponent("timeseries")
	}
	return nil
}
