// Package metrics exposes Prometheus collectors for the watch engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvnwatch_cycles_total",
			Help: "Number of completed watch cycles.",
		},
	)

	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mvnwatch_fetches_total",
			Help: "Number of metadata fetches by result.",
		},
		[]string{"result"},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mvnwatch_fetch_duration_seconds",
			Help:    "Metadata fetch latency.",
			Buckets: prometheus.DefBuckets,
		},
	)

	NotificationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvnwatch_notifications_total",
			Help: "Number of new-version notifications emitted.",
		},
	)

	NotifyErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mvnwatch_notify_errors_total",
			Help: "Number of notification deliveries that failed.",
		},
	)
)

// Fetch result labels.
const (
	ResultOK     = "ok"
	ResultAbsent = "absent"
	ResultError  = "error"
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(
		CyclesTotal,
		FetchesTotal,
		FetchDuration,
		NotificationsTotal,
		NotifyErrorsTotal,
	)
}

// Handler returns an HTTP handler serving the watch engine metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
