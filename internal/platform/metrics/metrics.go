package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registering the same collector twice panics, so Init is guarded.
	once sync.Once

	// route is the pattern (/:id), never the raw path, to keep label cardinality bounded.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPInflightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Operations counts account and link operations by outcome
	// (ok, invalid_input, forbidden, not_found, internal).
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shortener_operations_total",
			Help: "Link and account operations by outcome.",
		},
		[]string{"op", "outcome"},
	)

	IDCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_id_collisions_total",
			Help: "Generated short ids that were already taken or reserved.",
		},
	)

	AuditDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shortener_audit_dropped_total",
			Help: "Audit events the sink failed to accept.",
		},
	)
)

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDurationSeconds,
			HTTPInflightRequests,
			Operations,
			IDCollisions,
			AuditDropped,
		)
	})
}
