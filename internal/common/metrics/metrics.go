// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_queries_total",
			Help: "Total number of successful query orchestrations",
		},
		[]string{"datasource_id"},
	)

	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_query_errors_total",
			Help: "Total number of failed query orchestrations by taxonomy code",
		},
		[]string{"error_code"},
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "gateway_query_duration_seconds",
			Help: "End-to-end duration of query orchestration in seconds",
		},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_result_cache_hits_total",
			Help: "Total number of queries served from the result cache",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_notifications_total",
			Help: "Total number of notification deliveries by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_requests_in_flight",
			Help: "Number of query requests currently being handled",
		},
	)
)
