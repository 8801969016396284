package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "veritor"

// Metrics tracks compilation and verification activity.
type Metrics struct {
	registry *prometheus.Registry

	compilationsTotal   *prometheus.CounterVec
	compilationDuration *prometheus.HistogramVec

	verificationsTotal   *prometheus.CounterVec
	verificationDuration *prometheus.HistogramVec

	registeredPolicies prometheus.Gauge
}

// New creates and registers the metric set. A nil registry gets a
// fresh private one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		compilationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total number of policy compilations by outcome",
			},
			[]string{"policy_id", "status"},
		),

		compilationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compilation_duration_seconds",
				Help:      "Duration of policy compilation in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"policy_id"},
		),

		verificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Total number of verifications by classification",
			},
			[]string{"policy_id", "classification"},
		),

		verificationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verification_duration_seconds",
				Help:      "Duration of verification in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"policy_id"},
		),

		registeredPolicies: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "registered_policies",
				Help:      "Number of policies currently published in the registry",
			},
		),
	}

	registry.MustRegister(
		m.compilationsTotal,
		m.compilationDuration,
		m.verificationsTotal,
		m.verificationDuration,
		m.registeredPolicies,
	)

	return m
}

// RecordCompilation records one compilation attempt.
// Status is "ok" or "error".
func (m *Metrics) RecordCompilation(policyID, status string, duration time.Duration) {
	m.compilationsTotal.WithLabelValues(policyID, status).Inc()
	m.compilationDuration.WithLabelValues(policyID).Observe(duration.Seconds())
}

// RecordVerification records one verification and its classification.
func (m *Metrics) RecordVerification(policyID, classification string, duration time.Duration) {
	m.verificationsTotal.WithLabelValues(policyID, classification).Inc()
	m.verificationDuration.WithLabelValues(policyID).Observe(duration.Seconds())
}

// SetRegisteredPolicies sets the published policy count gauge.
func (m *Metrics) SetRegisteredPolicies(count int) {
	m.registeredPolicies.Set(float64(count))
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
