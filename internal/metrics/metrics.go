// Package metrics provides Prometheus metrics for the sync client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Remote call metrics
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptsync_calls_total",
			Help: "Total number of remote procedure calls",
		},
		[]string{"op", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scriptsync_call_duration_seconds",
			Help:    "Remote procedure call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Session metrics
	sessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptsync_sessions_total",
			Help: "Total number of sessions by final outcome",
		},
		[]string{"outcome"},
	)

	scriptsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scriptsync_scripts_processed_total",
			Help: "Total number of scripts processed per operation",
		},
		[]string{"op"},
	)

	conflictsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scriptsync_conflicts_detected_total",
			Help: "Total number of upload conflicts detected",
		},
	)
)

// ObserveCall records one remote call with its duration and outcome.
func ObserveCall(op string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	callsTotal.WithLabelValues(op, outcome).Inc()
	callDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveSession records one finished session.
func ObserveSession(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	sessionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveScript records one successfully processed script.
func ObserveScript(op string) {
	scriptsSynced.WithLabelValues(op).Inc()
}

// ObserveConflict records one detected upload conflict.
func ObserveConflict() {
	conflictsDetected.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a metrics endpoint on addr. It blocks, so callers run it in
// a goroutine. Watch mode uses this; one-shot commands never do.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
