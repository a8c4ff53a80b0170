package sim

import (
	"go.uber.org/zap"

	"github.com/gridalign/gridalign/internal/errors"
	"github.com/gridalign/gridalign/internal/interp"
	"github.com/gridalign/gridalign/internal/timeseries"
)

// Consumer is one deferrable load: an identity, an allowed start window, and a
// lazily loaded relative-time cumulative-energy profile.
//
// Each consumer runs as its own worker goroutine with a mailbox. Its profile
// is loaded as the first action after Start, the outcome is reported on the
// load-result channel, and only a successfully loaded consumer serves
// coverage and consumption requests. All mutable state is owned by the worker
// goroutine; other components communicate only through message payloads.
type Consumer struct {
	id          string
	window      Interval
	profilePath string

	// Set once during load, read-only afterwards.
	profile  *interp.Interpolant
	duration int64

	reqs   chan interface{}
	logger *zap.Logger
}

// NewConsumer creates a consumer for one row of the events file. The profile
// is not read until Start.
func NewConsumer(ev timeseries.Event, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		id:          ev.ID,
		window:      Interval{Lower: ev.EarliestStart, Upper: ev.LatestStart},
		profilePath: ev.ProfileFile,
		reqs:        make(chan interface{}, 4),
		logger:      logger.Named("consumer").With(zap.String("id", ev.ID)),
	}
}

// ID returns the consumer's identity from the events file.
func (c *Consumer) ID() string {
	return c.id
}

// StartWindow returns the externally fixed [earliest, latest] start bound.
func (c *Consumer) StartWindow() Interval {
	return c.window
}

// Start launches the worker goroutine. The profile load runs first and its
// outcome is sent on loadResults exactly once; on failure the worker exits
// without ever serving a request.
func (c *Consumer) Start(loadResults chan<- error) {
	go func() {
		err := c.load()
		loadResults <- err
		if err != nil {
			c.logger.Error("profile load failed", zap.Error(err))
			return
		}
		c.logger.Debug("ready",
			zap.Int64("duration", c.duration),
			zap.Int64("earliest", c.window.Lower),
			zap.Int64("latest", c.window.Upper),
		)
		for req := range c.reqs {
			switch m := req.(type) {
			case coverageRequest:
				m.reply <- coverageReply{Consumer: c, Coverage: c.coverage()}
			case consumptionRequest:
				energy, err := c.computeConsumption(m.start, m.times)
				m.reply <- consumptionReply{Consumer: c, Energy: energy, Err: err}
			}
		}
	}()
}

// Stop closes the mailbox; the worker exits after draining pending requests.
func (c *Consumer) Stop() {
	close(c.reqs)
}

// RequestCoverage asks the worker for its coverage interval. The reply
// arrives asynchronously on the given channel.
func (c *Consumer) RequestCoverage(reply chan<- coverageReply) {
	c.reqs <- coverageRequest{reply: reply}
}

// RequestConsumption asks the worker for its incremental energy draw at each
// of the shared sample times, given an assigned absolute start time.
func (c *Consumer) RequestConsumption(start float64, times []int64, reply chan<- consumptionReply) {
	c.reqs <- consumptionRequest{start: start, times: times, reply: reply}
}

// load parses the profile file into a relative-time interpolant. A malformed
// or empty file is an input-data error and the consumer never becomes ready.
func (c *Consumer) load() error {
	series, err := timeseries.LoadSeries(c.profilePath)
	if err != nil {
		return err
	}
	last, _ := series.Last()
	profile, err := interp.NewFromSeries(series, interp.DefaultMethod)
	if err != nil {
		return err
	}
	c.duration = last
	c.profile = profile
	return nil
}

// coverage is [earliestStart, latestStart+duration]: the absolute span of
// time during which this load could possibly be drawing power.
func (c *Consumer) coverage() Interval {
	return Interval{Lower: c.window.Lower, Upper: c.window.Upper + c.duration}
}

// computeConsumption returns the incremental energy drawn in the interval
// ending at each shared sample time, for the given assigned start. Samples
// before the start contribute zero. The first sample past start+duration
// absorbs whatever profile energy the earlier samples have not yet covered,
// after which the scan stops and all later entries stay zero, so the total
// contribution always equals the profile's full energy whenever the sample
// axis reaches past the consumption window.
func (c *Consumer) computeConsumption(start float64, times []int64) ([]float64, error) {
	out := make([]float64, len(times))
	end := start + float64(c.duration)
	prev := 0.0
	for i, ti := range times {
		t := float64(ti)
		if t < start {
			continue
		}
		if t <= end {
			v, err := c.profile.Evaluate(t - start)
			if err != nil {
				return nil, errors.Wrapf(err, errors.KindInvariant,
					"profile evaluation at relative time %g", t-start).
					WithComponent("sim").WithOperation("computeConsumption")
			}
			out[i] = v - prev
			prev = v
			continue
		}
		total, err := c.profile.Evaluate(float64(c.duration))
		if err != nil {
			return nil, errors.Wrap(err, errors.KindInvariant,
				"profile evaluation at full duration").
				WithComponent("sim").WithOperation("computeConsumption")
		}
		out[i] = total - prev
		break
	}
	return out, nil
}
