package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routelens_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnnotationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routelens_annotation_seconds",
		Help:    "Time spent annotating a source file end to end.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	DecoratorsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_decorators_found_total",
		Help: "Total number of handler decorators extracted from source files.",
	})

	RoutesResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_routes_resolved_total",
		Help: "Total number of decorators resolved to a concrete route.",
	})

	RoutesUnresolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "routelens_routes_unresolved_total",
		Help: "Total number of decorators that could not be resolved, by reason.",
	}, []string{"reason"})

	ExportTableBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_export_table_builds_total",
		Help: "Total number of contract export tables built from disk.",
	})

	ExportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_export_cache_hits_total",
		Help: "Total number of export table lookups served from cache.",
	})

	ResultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_result_cache_hits_total",
		Help: "Total number of per-decorator resolutions served from cache.",
	})

	ResultCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_result_cache_misses_total",
		Help: "Total number of per-decorator resolutions computed fresh.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	StaleUpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "routelens_stale_updates_dropped_total",
		Help: "Total number of annotation updates discarded because a newer request superseded them.",
	})
)
