// Package metrics exposes Prometheus counters for the verification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the verification instrumentation. A nil *Metrics is a no-op so
// tests can pass nil without registering collectors.
type Metrics struct {
	verifications *prometheus.CounterVec
	healed        prometheus.Counter
	duration      *prometheus.HistogramVec
}

// New registers the verification metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "veridoc_verifications_total",
			Help: "Verification attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		healed: factory.NewCounter(prometheus.CounterOpts{
			Name: "veridoc_verifications_healed_total",
			Help: "Database hashes rewritten from the ledger during verification.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "veridoc_verification_duration_seconds",
			Help:    "Verification latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

func (m *Metrics) ObserveVerification(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveHeal() {
	if m == nil {
		return
	}
	m.healed.Inc()
}
