// Package metrics holds the domain counters exported on /metrics next to
// the HTTP metrics collected by fiberprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reorders counts committed bulk reorders by sibling kind
	Reorders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapsdb",
		Name:      "reorders_total",
		Help:      "Committed bulk reorders by kind.",
	}, []string{"kind"})

	// UsageRecorded counts enrichment ledger rows appended
	UsageRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapsdb",
		Name:      "usage_recorded_total",
		Help:      "Enrichment usage rows appended to the ledger.",
	})

	// UsageCost sums recorded enrichment cost
	UsageCost = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mapsdb",
		Name:      "usage_cost_total",
		Help:      "Total enrichment cost recorded.",
	})

	// ReferenceCache counts reference data lookups by result (hit, miss)
	ReferenceCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapsdb",
		Name:      "reference_cache_requests_total",
		Help:      "Reference data cache lookups by result.",
	}, []string{"result"})
)
