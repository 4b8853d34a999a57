package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prefetchEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Name:      "prefetch_enqueued_total",
			Help:      "Option sources queued for background refresh.",
		},
	)

	prefetchFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Name:      "prefetch_failures_total",
			Help:      "Background refreshes that failed, by stage.",
		},
		[]string{"stage"},
	)

	inventoryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stockroom_client",
			Name:      "inventory_cache_lookups_total",
			Help:      "Inventory-by-product lookups, by cache outcome.",
		},
		[]string{"outcome"},
	)
)
