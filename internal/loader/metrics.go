package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Subsystem: "loader",
			Name:      "runs_total",
			Help:      "Loader runs by phase (started, ok, error).",
		},
		[]string{"phase"},
	)

	staleTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Subsystem: "loader",
			Name:      "stale_results_total",
			Help:      "Completions discarded because a newer run or Close superseded them.",
		},
	)
)
