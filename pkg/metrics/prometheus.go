package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerAttempts   *prometheus.CounterVec
	providerErrors     *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec
	crossMismatches    *prometheus.CounterVec
	verifyLatency      prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricetrust_provider_attempts_total",
				Help: "Total number of fetch attempts per provider",
			},
			[]string{"provider"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricetrust_provider_errors_total",
				Help: "Total number of provider errors by kind",
			},
			[]string{"provider", "kind"},
		),
		breakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricetrust_breaker_state",
				Help: "Circuit breaker state per provider (0 closed, 1 open, 2 half-open)",
			},
			[]string{"provider"},
		),
		breakerTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricetrust_breaker_transitions_total",
				Help: "Total number of breaker state transitions",
			},
			[]string{"provider", "state"},
		),
		crossMismatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricetrust_cross_check_mismatches_total",
				Help: "Total number of cross-check close price mismatches",
			},
			[]string{"primary", "secondary"},
		),
		verifyLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricetrust_verify_duration_seconds",
				Help:    "Duration of price verification in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordProviderAttempt records a fetch attempt against a provider.
func (r *Recorder) RecordProviderAttempt(provider string) {
	r.providerAttempts.WithLabelValues(provider).Inc()
}

// RecordProviderError records a provider error by kind.
func (r *Recorder) RecordProviderError(provider, kind string) {
	r.providerErrors.WithLabelValues(provider, kind).Inc()
}

// RecordBreakerState records a breaker state transition for a provider.
func (r *Recorder) RecordBreakerState(provider, state string) {
	r.breakerState.WithLabelValues(provider).Set(breakerStateValue(state))
	r.breakerTransitions.WithLabelValues(provider, state).Inc()
}

// RecordCrossCheckMismatch records a close price mismatch between providers.
func (r *Recorder) RecordCrossCheckMismatch(base, other string) {
	r.crossMismatches.WithLabelValues(base, other).Inc()
}

// RecordVerifyLatency records end-to-end verification latency in seconds.
func (r *Recorder) RecordVerifyLatency(seconds float64) {
	r.verifyLatency.Observe(seconds)
}

func breakerStateValue(state string) float64 {
	switch state {
	case "open":
		return 1
	case "half_open":
		return 2
	default:
		return 0
	}
}
