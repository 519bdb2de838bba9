// Package metrics provides Prometheus metrics for the watchdog subsystem.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TicksTotal counts watchdog size checks across all runs.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logguard_watchdog_ticks_total",
		Help: "Total number of watchdog size checks performed.",
	})

	// InterruptionsTotal counts runs interrupted by the watchdog, by outcome.
	InterruptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logguard_interruptions_total",
		Help: "Total number of runs interrupted for oversized logs, by outcome.",
	}, []string{"outcome"})

	// InterruptedLogBytes observes the log size at the moment of interruption.
	InterruptedLogBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logguard_interrupted_log_bytes",
		Help:    "Log size in bytes observed when a run was interrupted.",
		Buckets: prometheus.ExponentialBuckets(1<<20, 4, 8),
	})

	// ActiveWatchdogs tracks currently scheduled watchdog tasks.
	ActiveWatchdogs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "logguard_active_watchdogs",
		Help: "Current number of runs with an active watchdog task.",
	})

	// RunsTotal counts finished runs by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logguard_runs_total",
		Help: "Total number of finished runs, by outcome.",
	}, []string{"outcome"})
)

// RecordTick increments the tick counter.
func RecordTick() {
	TicksTotal.Inc()
}

// RecordInterruption records one watchdog interruption and the observed size.
func RecordInterruption(outcome string, sizeBytes float64) {
	InterruptionsTotal.WithLabelValues(outcome).Inc()
	InterruptedLogBytes.Observe(sizeBytes)
}

// AddActiveWatchdogs adjusts the active watchdog gauge.
func AddActiveWatchdogs(delta float64) {
	ActiveWatchdogs.Add(delta)
}

// RecordRunFinished increments the finished-run counter for the outcome.
func RecordRunFinished(outcome string) {
	RunsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the HTTP handler serving the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
