package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "stockroom_client",
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Session transitions (login, logout, invalidated).",
	},
	[]string{"kind"},
)
