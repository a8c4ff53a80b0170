// Package solve defines the bound-constrained minimization contract the
// scheduler consumes, and a derivative-free implementation backed by gonum.
package solve

import (
	"context"
)

// Objective is the function being minimized. It is called once per trial
// point; an error aborts the solve.
type Objective func(x []float64) (float64, error)

// Status describes how a solve terminated. Converged and LimitReached are
// both normal outcomes that still carry a usable best-found point; only
// Failed is escalated as an error by callers.
type Status int

const (
	// StatusConverged means the tolerance criteria were met.
	StatusConverged Status = iota
	// StatusLimitReached means an iteration or time budget ran out.
	StatusLimitReached
	// StatusFailed means the solve ended without a usable point.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusLimitReached:
		return "limit reached"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of a solve: the best point found, its objective
// value, and how the solver stopped.
type Result struct {
	Point  []float64
	Value  float64
	Status Status
}

// Solver is a bound-constrained derivative-free minimizer. Implementations
// are configured with one bound interval per variable and a single objective,
// then driven by Solve from an initial point.
type Solver interface {
	// SetBounds fixes the per-variable [min, max] intervals. The number of
	// intervals must equal the solver's variable count.
	SetBounds(bounds [][2]float64) error

	// SetObjective installs the function to minimize.
	SetObjective(obj Objective)

	// Solve runs the minimization from the given initial point and returns
	// the best point found. A Result with StatusLimitReached is a success.
	Solve(ctx context.Context, initial []float64) (*Result, error)
}
