package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "samplefit"

// Metrics holds the service counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	allocations        *prometheus.CounterVec
	allocationFailures *prometheus.CounterVec
	selectionRetries   prometheus.Counter
	processed          *prometheus.CounterVec
	corrections        *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Samples allocated, by pool.",
		}, []string{"pool"}),
		allocationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_failures_total",
			Help:      "Rejected allocation attempts, by error code.",
		}, []string{"code"}),
		selectionRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_retries_total",
			Help:      "Pool selections retried after losing a capacity race.",
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_samples_total",
			Help:      "Samples released by manual processing, by pool.",
		}, []string{"pool"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrections_total",
			Help:      "Correction workflow outcomes.",
		}, []string{"stage", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.allocations, m.allocationFailures, m.selectionRetries, m.processed, m.corrections)
	}
	return m
}

func (m *Metrics) Allocated(pool string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(pool).Inc()
}

func (m *Metrics) AllocationFailed(code string) {
	if m == nil {
		return
	}
	m.allocationFailures.WithLabelValues(code).Inc()
}

func (m *Metrics) SelectionRetried() {
	if m == nil {
		return
	}
	m.selectionRetries.Inc()
}

func (m *Metrics) Processed(pool string, n int) {
	if m == nil {
		return
	}
	m.processed.WithLabelValues(pool).Add(float64(n))
}

// Correction records the outcome of a correction stage ("request", "verify" or "apply").
func (m *Metrics) Correction(stage, outcome string) {
	if m == nil {
		return
	}
	m.corrections.WithLabelValues(stage, outcome).Inc()
}
