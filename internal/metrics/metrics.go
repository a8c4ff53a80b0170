// Package metrics provides Prometheus instrumentation for the scheduling
// simulator: objective-evaluation timing and counts, the best objective value
// found so far, and the size of the shared production timeline. All metrics
// are exposed on the status server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a scheduling run.
type Metrics struct {
	ObjectiveEvalSeconds prometheus.Histogram
	ObjectiveEvalsTotal  prometheus.Counter
	BestObjective        prometheus.Gauge
	TimelineSamples      prometheus.Gauge
	ErrorsTotal          *prometheus.CounterVec
}

// New creates and registers all metrics with the default registerer.
func New() *Metrics {
	return &Metrics{
		ObjectiveEvalSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridalign_objective_eval_seconds",
			Help:    "Time spent in one full objective evaluation cycle",
			Buckets: prometheus.DefBuckets,
		}),
		ObjectiveEvalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gridalign_objective_evals_total",
			Help: "Number of objective evaluations performed",
		}),
		BestObjective: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gridalign_best_objective",
			Help: "Best (lowest) grid-import energy found so far",
		}),
		TimelineSamples: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "gridalign_timeline_samples",
			Help: "Number of samples in the shared production timeline",
		}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gridalign_errors_total",
			Help: "Errors by component",
		}, []string{"component"}),
	}
}

// Nop returns metrics backed by an isolated registry, for tests and for runs
// with the status server disabled.
func Nop() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		ObjectiveEvalSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "gridalign_objective_eval_seconds", Help: "unused",
		}),
		ObjectiveEvalsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridalign_objective_evals_total", Help: "unused",
		}),
		BestObjective: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridalign_best_objective", Help: "unused",
		}),
		TimelineSamples: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridalign_timeline_samples", Help: "unused",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridalign_errors_total", Help: "unused",
		}, []string{"component"}),
	}
}
