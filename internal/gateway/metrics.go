package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rb_client",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests issued, by method and status class.",
		},
		[]string{"method", "status"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rb_client",
			Subsystem: "gateway",
			Name:      "retries_total",
			Help:      "Retry attempts after a retryable failure.",
		},
		[]string{"method"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rb_client",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Logical request latency including retries.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)
