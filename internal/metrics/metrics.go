// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshTotal counts snapshot refreshes by source and result.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_refresh_total",
		Help: "Catalog snapshot refreshes by source and result",
	}, []string{"source", "result"})

	// RefreshDuration tracks how long a fetch-and-build takes.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_refresh_duration_seconds",
		Help:    "Catalog refresh duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	// SnapshotProducts is the product count of the live snapshot.
	SnapshotProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_snapshot_products",
		Help: "Products in the live catalog snapshot",
	})

	// SnapshotCategories is the category node count of the live snapshot.
	SnapshotCategories = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_snapshot_categories",
		Help: "Category nodes in the live catalog snapshot",
	})

	// BrowseDuration tracks filter+sort+paginate latency by entry point.
	BrowseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_browse_duration_seconds",
		Help:    "Catalog browse duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"operation"})

	// BrowseResults tracks how many products match a browse.
	BrowseResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_browse_results",
		Help:    "Matching products per browse",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
	})

	// SessionMutations counts session mutations by kind.
	SessionMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_session_mutations_total",
		Help: "Catalog session mutations by kind",
	}, []string{"kind"})
)
