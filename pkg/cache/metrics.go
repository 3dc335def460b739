package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeStale = "stale"
	outcomeError = "error"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "formidable",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by store and outcome (hit, miss, stale, error)",
	},
	[]string{"store", "outcome"},
)

func observe(store, outcome string) {
	requestsTotal.WithLabelValues(store, outcome).Inc()
}
