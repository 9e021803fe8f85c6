// Package metrics registers the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DBSessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_sessions_open",
			Help: "Number of request-scoped database sessions currently held",
		},
	)

	GateRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gate_rejections_total",
			Help: "Total number of requests rejected by the validity gate",
		},
	)
)
