package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gridalign/gridalign/internal/errors"
	"github.com/gridalign/gridalign/internal/metrics"
	"github.com/gridalign/gridalign/internal/solve"
	"github.com/gridalign/gridalign/internal/timeseries"
)

// DefaultOutputFile is where the final assignment is written when no output
// path is configured.
const DefaultOutputFile = "AST.csv"

// Params configures a scheduling run.
type Params struct {
	// ProductionFile is the two-column cumulative renewable production CSV.
	ProductionFile string
	// EventsFile is the consumer-events table.
	EventsFile string
	// OutputFile receives the final assignment. Defaults to AST.csv.
	OutputFile string
	// Daylight optionally biases the optimizer's initial guess toward the
	// productive window. It never constrains the solve itself.
	Daylight *Interval
	// Seed seeds the initial-guess random source. Zero means time-based.
	Seed int64
}

// SolverFactory builds the bound-constrained minimizer for a given variable
// count. The default factory creates a gonum-backed Nelder-Mead solver.
type SolverFactory func(numVars int) (solve.Solver, error)

// Snapshot is a point-in-time view of a run for the status server.
type Snapshot struct {
	State       string       `json:"state"`
	Consumers   int          `json:"consumers"`
	Evaluations int64        `json:"evaluations"`
	BestValue   float64      `json:"best_value"`
	Best        []Assignment `json:"best,omitempty"`
}

// Scheduler drives a whole run: it loads the production profile, starts all
// consumer workers, holds the construction rendezvous barriers, serves the
// optimizer's objective callback, and persists the final assignment.
//
// Lifecycle: constructing -> ready -> solving -> done. All agents are ready
// and every coverage-driven timeline extension has completed strictly before
// the first objective evaluation; the timeline length is therefore fixed for
// the whole solve.
type Scheduler struct {
	params    Params
	logger    *zap.Logger
	mets      *metrics.Metrics
	rng       *rand.Rand
	factory   SolverFactory
	consumers []*Consumer
	acc       *Accumulator
	replies   chan consumptionReply

	mu        sync.Mutex
	state     string
	evals     int64
	bestValue float64
	bestPoint []float64
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the structured logger for the run.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithMetrics sets the Prometheus metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) { s.mets = m }
}

// WithSolverFactory overrides how the minimizer is built.
func WithSolverFactory(f SolverFactory) Option {
	return func(s *Scheduler) { s.factory = f }
}

// NewScheduler constructs a run: loads the production series, creates and
// starts every consumer, and blocks until all profiles are loaded and every
// coverage reply has been folded into the production timeline. A consumer
// whose profile fails to load aborts construction with the load error rather
// than hanging the barrier.
func NewScheduler(params Params, opts ...Option) (*Scheduler, error) {
	const op = "NewScheduler"

	if params.OutputFile == "" {
		params.OutputFile = DefaultOutputFile
	}

	s := &Scheduler{
		params:    params,
		logger:    zap.NewNop(),
		state:     "constructing",
		bestValue: math.Inf(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mets == nil {
		s.mets = metrics.Nop()
	}
	if s.factory == nil {
		s.factory = func(numVars int) (solve.Solver, error) {
			return solve.NewNelderMead(numVars, solve.Config{Logger: s.logger})
		}
	}
	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))
	s.logger = s.logger.Named("scheduler")

	production, err := timeseries.LoadSeries(params.ProductionFile)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindResource, "loading production profile").
			WithComponent("sim").WithOperation(op)
	}
	s.acc, err = NewAccumulator(production.Times(), s.logger, s.mets)
	if err != nil {
		return nil, err
	}
	if err := s.acc.SetProductionValues(production.Values()); err != nil {
		return nil, err
	}

	events, err := timeseries.LoadEvents(params.EventsFile)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindResource, "loading consumer events").
			WithComponent("sim").WithOperation(op)
	}

	s.consumers = make([]*Consumer, len(events))
	s.replies = make(chan consumptionReply, len(events))
	loadResults := make(chan error, len(events))
	for i, ev := range events {
		s.consumers[i] = NewConsumer(ev, s.logger)
		s.consumers[i].Start(loadResults)
	}

	// Startup load-failure check: collect every load outcome before the
	// coverage barrier so a bad profile is a fatal configuration error
	// instead of a hung rendezvous.
	var loadErr error
	for range s.consumers {
		if err := <-loadResults; err != nil && loadErr == nil {
			loadErr = err
		}
	}
	if loadErr != nil {
		s.Stop()
		s.mets.ErrorsTotal.WithLabelValues("consumer").Inc()
		return nil, errors.Wrap(loadErr, errors.KindInvalidInput, "consumer profile load failed").
			WithComponent("sim").WithOperation(op)
	}

	// Coverage rendezvous: every reply extends the shared timeline before
	// the first objective evaluation may begin.
	coverage := make(chan coverageReply, len(s.consumers))
	for _, c := range s.consumers {
		c.RequestCoverage(coverage)
	}
	for range s.consumers {
		reply := <-coverage
		s.acc.ExtendTimeAxis(reply.Coverage)
	}

	s.logger.Info("scheduler ready",
		zap.Int("consumers", len(s.consumers)),
		zap.Int("timeline_samples", s.acc.Len()),
	)
	s.setState("ready")
	return s, nil
}

// Consumers returns the number of consumer agents.
func (s *Scheduler) Consumers() int {
	return len(s.consumers)
}

// Stop shuts down all consumer workers.
func (s *Scheduler) Stop() {
	for _, c := range s.consumers {
		if c != nil {
			c.Stop()
		}
	}
}

func (s *Scheduler) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Snapshot returns the current run state for the status server.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:       s.state,
		Consumers:   len(s.consumers),
		Evaluations: s.evals,
	}
	// The best value stays at +Inf until the first evaluation lands; keep it
	// out of the snapshot so it JSON-encodes cleanly.
	if s.bestPoint != nil {
		snap.BestValue = s.bestValue
		snap.Best = s.assignments(s.bestPoint)
	}
	return snap
}

// assignments pairs consumer IDs with rounded start times, in construction
// order. Callers hold s.mu or own the point exclusively.
func (s *Scheduler) assignments(point []float64) []Assignment {
	out := make([]Assignment, len(s.consumers))
	for i, c := range s.consumers {
		out[i] = Assignment{ID: c.ID(), Start: int64(math.Round(point[i]))}
	}
	return out
}

// Objective performs exactly one full accumulator cycle for a candidate
// start-time vector: reset, broadcast one consumption request per consumer,
// fold the replies in arrival order, reduce to the grid-import energy.
func (s *Scheduler) Objective(starts []float64) (float64, error) {
	const op = "Objective"
	if len(starts) != len(s.consumers) {
		return 0, errors.Newf(errors.KindInvariant,
			"%d start times for %d consumers", len(starts), len(s.consumers)).
			WithComponent("sim").WithOperation(op)
	}

	timer := time.Now()
	s.acc.Reset()
	times := s.acc.SampleTimes()
	for i, c := range s.consumers {
		c.RequestConsumption(starts[i], times, s.replies)
	}
	// Replies arrive in arbitrary order; the accumulation is a commutative
	// element-wise sum, applied strictly one reply at a time.
	for range s.consumers {
		reply := <-s.replies
		if reply.Err != nil {
			s.mets.ErrorsTotal.WithLabelValues("consumer").Inc()
			return 0, reply.Err
		}
		if err := s.acc.Accumulate(reply.Energy); err != nil {
			s.mets.ErrorsTotal.WithLabelValues("accumulator").Inc()
			return 0, err
		}
	}

	value, err := s.acc.Value()
	if err != nil {
		s.mets.ErrorsTotal.WithLabelValues("accumulator").Inc()
		return 0, err
	}

	s.mets.ObjectiveEvalSeconds.Observe(time.Since(timer).Seconds())
	s.mets.ObjectiveEvalsTotal.Inc()

	s.mu.Lock()
	s.evals++
	if value < s.bestValue {
		s.bestValue = value
		s.bestPoint = append(s.bestPoint[:0], starts...)
		s.mets.BestObjective.Set(value)
	}
	s.mu.Unlock()

	return value, nil
}

// initialGuess draws one start time per consumer, uniformly from the
// consumer's allowed window intersected with the daylight interval when one
// is configured. An empty intersection falls back to the full window.
func (s *Scheduler) initialGuess() []float64 {
	guess := make([]float64, len(s.consumers))
	for i, c := range s.consumers {
		w := c.StartWindow()
		lo, hi := float64(w.Lower), float64(w.Upper)
		if d := s.params.Daylight; d != nil {
			dlo := math.Max(lo, float64(d.Lower))
			dhi := math.Min(hi, float64(d.Upper))
			if dlo <= dhi {
				lo, hi = dlo, dhi
			}
		}
		guess[i] = lo + s.rng.Float64()*(hi-lo)
	}
	return guess
}

// AssignStartTimes runs the optimizer over the consumers' start windows and
// writes the final assignment to the output file. Hitting the optimizer's
// iteration or time budget is a normal terminal outcome; the best-found
// assignment is still persisted.
func (s *Scheduler) AssignStartTimes(ctx context.Context) (*solve.Result, error) {
	const op = "AssignStartTimes"
	s.setState("solving")

	bounds := make([][2]float64, len(s.consumers))
	for i, c := range s.consumers {
		w := c.StartWindow()
		bounds[i] = [2]float64{float64(w.Lower), float64(w.Upper)}
	}

	solver, err := s.factory(len(s.consumers))
	if err != nil {
		return nil, err
	}
	if err := solver.SetBounds(bounds); err != nil {
		return nil, err
	}
	solver.SetObjective(s.Objective)

	result, err := solver.Solve(ctx, s.initialGuess())
	if err != nil {
		s.setState("failed")
		return nil, errors.Wrap(err, errors.KindUnknown, "solve failed").
			WithComponent("sim").WithOperation(op)
	}

	s.logger.Info("assignment found",
		zap.String("status", result.Status.String()),
		zap.Float64("grid_energy", result.Value),
	)

	if err := WriteResult(s.params.OutputFile, result.Value, s.assignments(result.Point)); err != nil {
		s.setState("failed")
		return nil, err
	}
	s.setState("done")
	return result, nil
}
