// Package metrics holds the Prometheus collectors of the sync engine.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for monitoring both sync directions
var (
	Ticks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsync_ticks_total",
			Help: "Total number of sync ticks by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	TicksSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsync_ticks_skipped_total",
			Help: "Total number of ticks skipped because the previous tick was still running",
		},
		[]string{"direction"},
	)

	TickDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gridsync_tick_duration_seconds",
			Help:    "Duration of sync ticks",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	Rows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsync_rows_total",
			Help: "Total number of row actions applied by the reconcilers",
		},
		[]string{"direction", "action"},
	)

	Retries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsync_retries_total",
			Help: "Total number of retried external calls",
		},
		[]string{"operation"},
	)

	RetryGiveUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gridsync_retry_give_ups_total",
			Help: "Total number of external calls that failed for good",
		},
		[]string{"operation"},
	)

	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gridsync_events_dropped_total",
			Help: "Total number of events dropped for slow subscribers",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(Ticks)
	prometheus.MustRegister(TicksSkipped)
	prometheus.MustRegister(TickDuration)
	prometheus.MustRegister(Rows)
	prometheus.MustRegister(Retries)
	prometheus.MustRegister(RetryGiveUps)
	prometheus.MustRegister(EventsDropped)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
