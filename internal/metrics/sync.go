package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Index sync Prometheus metrics.
var (
	SyncItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_items_total",
			Help:      "Catalog items examined by sync runs, by outcome",
		},
		[]string{"outcome", "reason"},
	)

	SyncUpsertedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_upserted_items_total",
			Help:      "Items written to the vector store, by batch result",
		},
		[]string{"status"}, // ok, error
	)

	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Completed sync runs",
		},
		[]string{"status", "mode"}, // status: ok, failed; mode: incremental, rebuild
	)

	SyncRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Sync run wall-clock duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	SyncLastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync",
		},
	)

	ItemCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_cache_total",
			Help:      "Zotero item lookup cache hits and misses",
		},
		[]string{"result"},
	)
)

var syncOnce sync.Once

// RegisterSyncMetrics registers sync and item cache metrics with the default registry.
func RegisterSyncMetrics() {
	syncOnce.Do(func() {
		prometheus.MustRegister(
			SyncItemsTotal,
			SyncUpsertedTotal,
			SyncRunsTotal,
			SyncRunDuration,
			SyncLastSuccessTimestamp,
			ItemCacheTotal,
		)
	})
}
