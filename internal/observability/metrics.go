// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the broker.
type Metrics struct {
	// Order lifecycle metrics
	OrdersPrepared   prometheus.Counter
	OrdersSubmitted  prometheus.Counter
	PrepareFailures  *prometheus.CounterVec
	SubmitRejections *prometheus.CounterVec

	// Relay metrics
	RelayDuration *prometheus.HistogramVec

	// Confirmation metrics
	TxConfirmed          prometheus.Counter
	TxFailed             prometheus.Counter
	ConfirmationTimeouts prometheus.Counter

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swap_broker"
	}

	return &Metrics{
		OrdersPrepared: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "prepared_total",
			Help:      "Total number of orders prepared",
		}),
		OrdersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "submitted_total",
			Help:      "Total number of orders successfully submitted",
		}),
		PrepareFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "prepare_failures_total",
			Help:      "Total number of failed prepare requests by reason",
		}, []string{"reason"}),
		SubmitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "submit_rejections_total",
			Help:      "Total number of rejected submissions by reason",
		}, []string{"reason"}),
		RelayDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "relay_duration_seconds",
			Help:      "Duration of transaction relay calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		TxConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "tx_confirmed_total",
			Help:      "Total number of relayed transactions confirmed on-chain",
		}),
		TxFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "tx_failed_total",
			Help:      "Total number of relayed transactions that failed on-chain",
		}),
		ConfirmationTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "confirmation_timeouts_total",
			Help:      "Total number of confirmations not observed before timeout",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPrepared increments the prepared orders counter.
func RecordPrepared() {
	DefaultMetrics.OrdersPrepared.Inc()
}

// RecordPrepareFailure records a failed prepare request.
func RecordPrepareFailure(reason string) {
	DefaultMetrics.PrepareFailures.WithLabelValues(reason).Inc()
}

// RecordSubmitted increments the submitted orders counter.
func RecordSubmitted() {
	DefaultMetrics.OrdersSubmitted.Inc()
}

// RecordSubmitRejection records a rejected submission.
func RecordSubmitRejection(reason string) {
	DefaultMetrics.SubmitRejections.WithLabelValues(reason).Inc()
}

// ObserveRelay records a relay call duration.
func ObserveRelay(seconds float64, status string) {
	DefaultMetrics.RelayDuration.WithLabelValues(status).Observe(seconds)
}

// RecordConfirmation records a confirmation outcome.
func RecordConfirmation(failed bool) {
	if failed {
		DefaultMetrics.TxFailed.Inc()
	} else {
		DefaultMetrics.TxConfirmed.Inc()
	}
}

// RecordConfirmationTimeout records a confirmation that was never observed.
func RecordConfirmationTimeout() {
	DefaultMetrics.ConfirmationTimeouts.Inc()
}

// ObserveRequest records an HTTP request duration.
func ObserveRequest(route, status string, seconds float64) {
	DefaultMetrics.RequestDuration.WithLabelValues(route, status).Observe(seconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
