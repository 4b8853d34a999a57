package shardqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth is written only from the owning worker goroutine.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Subsystem: "prefetch",
			Name:      "submissions_total",
			Help:      "Prefetch jobs accepted for execution.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Subsystem: "prefetch",
			Name:      "queue_full_total",
			Help:      "Submit calls that timed out on a full shard.",
		},
		[]string{"shard"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Subsystem: "prefetch",
			Name:      "retries_total",
			Help:      "Job attempts repeated after a recoverable failure.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stockroom_client",
			Subsystem: "prefetch",
			Name:      "run_duration_seconds",
			Help:      "Job attempt latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stockroom_client",
			Subsystem: "prefetch",
			Name:      "queue_depth",
			Help:      "Current depth of each shard queue.",
		},
		[]string{"shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
