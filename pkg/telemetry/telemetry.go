// Package telemetry exposes evaluation timings and estimator fit outcomes as
// Prometheus collectors. A nil *Metrics is valid and records nothing.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "synthcheck"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors of one evaluator.
type Metrics struct {
	StageDuration *prometheus.HistogramVec
	EstimatorFits *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of one evaluation stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		EstimatorFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimator_fits_total",
			Help:      "Estimator fits by estimator, dataset and outcome.",
		}, []string{"estimator", "dataset", "outcome"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.StageDuration, m.EstimatorFits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStage records how long stage took.
func (m *Metrics) ObserveStage(stage string, took time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(took.Seconds())
}

// Time returns a func that records the time elapsed since Time was called.
//
//	defer m.Time("row_distance")()
func (m *Metrics) Time(stage string) func() {
	start := time.Now()
	return func() { m.ObserveStage(stage, time.Since(start)) }
}

// ObserveFit counts one estimator fit. It satisfies efficacy.FitObserver.
func (m *Metrics) ObserveFit(estimator, dataset string, _ time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.EstimatorFits.WithLabelValues(estimator, dataset, outcome).Inc()
}
