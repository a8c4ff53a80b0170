package solve

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"

	"github.com/gridalign/gridalign/internal/errors"
)

const component = "solve"

// Config controls a NelderMead solver.
type Config struct {
	// MaxIterations bounds the number of major iterations. Zero means the
	// default of 500.
	MaxIterations int

	// MaxRuntime bounds the wall-clock duration of a solve. Zero means no
	// runtime limit.
	MaxRuntime time.Duration

	// Logger receives per-solve debug output. Nil means no logging.
	Logger *zap.Logger
}

// NelderMead minimizes a black-box objective inside a box of per-variable
// bounds using the derivative-free Nelder-Mead simplex method. Bounds are
// enforced by clamping every trial point before evaluation.
type NelderMead struct {
	numVars int
	cfg     Config
	logger  *zap.Logger

	mu     sync.Mutex
	bounds [][2]float64
	obj    Objective
}

// NewNelderMead creates a solver for the given number of variables.
func NewNelderMead(numVars int, cfg Config) (*NelderMead, error) {
	if numVars < 1 {
		return nil, errors.Newf(errors.KindInvalidInput, "need at least 1 variable, got %d", numVars).
			WithComponent(component).WithOperation("NewNelderMead")
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 500
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NelderMead{
		numVars: numVars,
		cfg:     cfg,
		logger:  logger.Named("neldermead"),
	}, nil
}

// SetBounds fixes the per-variable intervals. A count mismatch with the
// variable count is an invariant violation, not recoverable input.
func (nm *NelderMead) SetBounds(bounds [][2]float64) error {
	if len(bounds) != nm.numVars {
		return errors.Newf(errors.KindInvariant,
			"%d bound intervals for %d variables", len(bounds), nm.numVars).
			WithComponent(component).WithOperation("SetBounds")
	}
	for i, b := range bounds {
		if b[1] < b[0] {
			return errors.Newf(errors.KindInvalidInput,
				"variable %d: inverted bounds [%g, %g]", i, b[0], b[1]).
				WithComponent(component).WithOperation("SetBounds")
		}
	}
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.bounds = append([][2]float64(nil), bounds...)
	return nil
}

// SetObjective installs the function to minimize.
func (nm *NelderMead) SetObjective(obj Objective) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.obj = obj
}

// Solve runs the minimization from the given initial point.
func (nm *NelderMead) Solve(ctx context.Context, initial []float64) (*Result, error) {
	const op = "Solve"
	nm.mu.Lock()
	bounds := nm.bounds
	obj := nm.obj
	nm.mu.Unlock()

	if bounds == nil {
		return nil, errors.New(errors.KindInvariant, "bounds not set").
			WithComponent(component).WithOperation(op)
	}
	if obj == nil {
		return nil, errors.New(errors.KindInvariant, "objective not set").
			WithComponent(component).WithOperation(op)
	}
	if len(initial) != nm.numVars {
		return nil, errors.Newf(errors.KindInvariant,
			"initial point has %d variables, want %d", len(initial), nm.numVars).
			WithComponent(component).WithOperation(op)
	}

	start := clampPoint(append([]float64(nil), initial...), bounds)

	var evalErr error
	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil || ctx.Err() != nil {
				return math.Inf(1)
			}
			clampPoint(x, bounds)
			v, err := obj(x)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			evals++
			return v
		},
	}

	settings := &optimize.Settings{
		MajorIterations: nm.cfg.MaxIterations,
		Runtime:         nm.cfg.MaxRuntime,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-8,
			Iterations: 50,
		},
	}

	method := &optimize.NelderMead{
		Reflection:  1.0,
		Expansion:   2.0,
		Contraction: 0.5,
		Shrink:      0.5,
	}

	nm.logger.Debug("starting solve",
		zap.Int("variables", nm.numVars),
		zap.Int("max_iterations", nm.cfg.MaxIterations),
	)

	result, err := optimize.Minimize(problem, start, settings, method)

	if evalErr != nil {
		return nil, errors.Wrap(evalErr, errors.KindUnknown, "objective evaluation failed").
			WithComponent(component).WithOperation(op)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if result == nil {
		return nil, errors.Wrap(err, errors.KindUnknown, "minimization failed").
			WithComponent(component).WithOperation(op)
	}

	res := &Result{
		Point:  clampPoint(append([]float64(nil), result.X...), bounds),
		Value:  result.F,
		Status: mapStatus(result.Status),
	}
	if res.Status == StatusFailed && err != nil {
		return nil, errors.Wrapf(err, errors.KindUnknown, "solver ended in status %v", result.Status).
			WithComponent(component).WithOperation(op)
	}

	nm.logger.Debug("solve finished",
		zap.String("status", res.Status.String()),
		zap.Float64("value", res.Value),
		zap.Int("evaluations", evals),
	)
	return res, nil
}

// clampPoint projects x into the bound box in place and returns it.
func clampPoint(x []float64, bounds [][2]float64) []float64 {
	for i := range x {
		x[i] = math.Max(bounds[i][0], math.Min(x[i], bounds[i][1]))
	}
	return x
}

// mapStatus folds gonum's termination statuses onto the three-way contract:
// tolerance-based stops are convergence, budget-based stops are limits, and
// everything else is a hard failure.
func mapStatus(s optimize.Status) Status {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return StatusConverged
	case optimize.IterationLimit,
		optimize.RuntimeLimit,
		optimize.FunctionEvaluationLimit:
		return StatusLimitReached
	default:
		return StatusFailed
	}
}
