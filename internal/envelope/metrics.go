package envelope

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Name:      "requests_total",
			Help:      "Backend calls by method and outcome code.",
		},
		[]string{"method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockroom_client",
			Name:      "request_duration_seconds",
			Help:      "Backend call latency including decode.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func observe(method string, success bool, err *Error, d time.Duration) {
	outcome := "ok"
	if !success && err != nil {
		outcome = err.ErrorCode
	}
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDuration.WithLabelValues(method).Observe(d.Seconds())
}
