package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecochain_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SettlementsTotal counts settlement outcomes per intent kind
	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_settlements_total",
			Help: "Total number of settlement attempts",
		},
		[]string{"kind", "outcome"},
	)

	// SettlementLatency tracks how long settlements take
	SettlementLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecochain_settlement_latency_seconds",
			Help:    "Settlement latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 3, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// TokensCreated counts tokens added to the catalog
	TokensCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecochain_tokens_created_total",
			Help: "Total number of tokens created",
		},
	)

	// CacheLookups counts response cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	// WebsocketSubscribers tracks connected live-feed clients
	WebsocketSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecochain_websocket_subscribers",
			Help: "Number of connected websocket subscribers",
		},
	)
)
