package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Catalog request metrics
var (
	CatalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of requests sent to the show catalog.",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Latency of show catalog requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Widget metrics
var (
	WidgetRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_renders_total",
			Help: "Total number of display region renders.",
		},
		[]string{"region"},
	)

	WidgetSupersededTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_superseded_total",
			Help: "Responses discarded because a newer request of the same unit was issued.",
		},
		[]string{"unit"},
	)
)

// HTTP surface metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served, by route and status code.",
		},
		[]string{"route", "code"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "widget_active_sessions",
			Help: "Number of widget sessions currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		CatalogRequestsTotal,
		CatalogRequestDuration,
		WidgetRendersTotal,
		WidgetSupersededTotal,
		HTTPRequestsTotal,
		ActiveSessions,
	)
}
