package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"

	// Resolution outcomes.
	OutcomePassthrough = "passthrough"
	OutcomeUUID        = "uuid"
	OutcomeNative      = "native"
	OutcomeResolved    = "resolved"
	OutcomeUnresolved  = "unresolved"
)

var (
	dispatchTotal   *prometheus.CounterVec
	resolutionTotal *prometheus.CounterVec
	executeDuration *prometheus.HistogramVec

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// InitMetrics initializes all Prometheus metrics.
// This should be called once at startup if Prometheus metrics are enabled.
func InitMetrics() {
	metricsOnce.Do(func() {
		dispatchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cckmops_dispatch_total",
				Help: "Total number of dispatched actions by outcome",
			},
			[]string{"provider", "outcome"},
		)

		resolutionTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cckmops_resolution_total",
				Help: "Total number of identifier resolutions by outcome",
			},
			[]string{"provider", "outcome"},
		)

		executeDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cckmops_execute_duration_seconds",
				Help:    "Duration of executor invocations in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"provider"},
		)

		metricsRegistered = true
	})
}

// RecordDispatch records the outcome of one dispatched action.
// This is safe to call even if metrics have not been initialized.
func RecordDispatch(provider, outcome string) {
	if !metricsRegistered || dispatchTotal == nil {
		return
	}
	dispatchTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordResolution records how an identifier was resolved.
func RecordResolution(provider, outcome string) {
	if !metricsRegistered || resolutionTotal == nil {
		return
	}
	resolutionTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveExecute records the duration of one executor call.
func ObserveExecute(provider string, seconds float64) {
	if !metricsRegistered || executeDuration == nil {
		return
	}
	executeDuration.WithLabelValues(provider).Observe(seconds)
}

// GetDispatchTotal returns the dispatch counter for testing.
func GetDispatchTotal() *prometheus.CounterVec {
	return dispatchTotal
}

// GetResolutionTotal returns the resolution counter for testing.
func GetResolutionTotal() *prometheus.CounterVec {
	return resolutionTotal
}

// GetExecuteDuration returns the execute duration histogram for testing.
func GetExecuteDuration() *prometheus.HistogramVec {
	return executeDuration
}

// IsMetricsRegistered returns whether metrics have been initialized.
func IsMetricsRegistered() bool {
	return metricsRegistered
}
