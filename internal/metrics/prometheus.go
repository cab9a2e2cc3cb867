package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion and query service.

var (
	// Adapter/transport metrics
	AdapterCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_adapter_calls_total",
			Help: "Total number of outbound adapter calls",
		},
		[]string{"source", "endpoint", "status"},
	)

	AdapterCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_adapter_call_duration_seconds",
			Help:    "Duration of outbound adapter calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "endpoint"},
	)

	RateLimitWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_rate_limit_wait_seconds",
			Help:    "Time spent waiting on an adapter's token bucket before a call",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"source"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_db_connections_active",
			Help: "Number of active database pool connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_db_connections_idle",
			Help: "Number of idle database pool connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"source"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"source"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_sync_operations_total",
			Help: "Total number of sync runs, by workflow and terminal status",
		},
		[]string{"source", "workflow", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_sync_duration_seconds",
			Help:    "Duration of a sync run in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"source", "workflow"},
	)

	RecordsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_sync_records_processed_total",
			Help: "Total number of records processed by a sync run",
		},
		[]string{"source", "workflow"},
	)

	RecordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_sync_records_skipped_total",
			Help: "Total number of records skipped by a sync run, by failure kind",
		},
		[]string{"source", "workflow", "kind"},
	)

	MergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_resolver_merges_total",
			Help: "Total number of entity merges performed by the resolver",
		},
		[]string{"entity_type"},
	)

	// Domain gauges
	PlayersIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_players_total",
			Help: "Total number of canonical players in the store",
		},
	)

	TeamsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_teams_total",
			Help: "Total number of canonical teams in the store",
		},
	)

	GamesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_games_total",
			Help: "Total number of canonical games in the store",
		},
	)

	ActiveGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_active_games",
			Help: "Number of games not yet in a terminal status",
		},
	)

	// Analytics/query metrics
	AnalyticsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_analytics_request_duration_seconds",
			Help:    "Duration of an analytics engine computation in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	QueryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_query_request_duration_seconds",
			Help:    "Duration of a query facade call in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_errors_total",
			Help: "Total number of errors by component and taxonomy kind",
		},
		[]string{"component", "error_type"},
	)

	// Worker/scheduler metrics
	WorkerLoopIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hoopsync_worker_loop_iterations_total",
			Help: "Total number of scheduled worker loop iterations",
		},
		[]string{"job"},
	)

	WorkerLoopDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hoopsync_worker_loop_duration_seconds",
			Help:    "Duration of a scheduled worker loop iteration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hoopsync_system_uptime_seconds",
			Help: "Process uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hoopsync_last_successful_sync_timestamp",
			Help: "Unix timestamp of the last successful sync run, per source",
		},
		[]string{"source"},
	)
)

// RecordAdapterCall records an outbound adapter call.
func RecordAdapterCall(source, endpoint, status string, duration float64) {
	AdapterCallsTotal.WithLabelValues(source, endpoint, status).Inc()
	AdapterCallDuration.WithLabelValues(source, endpoint).Observe(duration)
}

// RecordRateLimitWait records time spent blocked on an adapter's token bucket.
func RecordRateLimitWait(source string, waitSeconds float64) {
	RateLimitWaitSeconds.WithLabelValues(source).Observe(waitSeconds)
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a response cache hit for source.
func RecordCacheHit(source string) {
	CacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCacheMiss records a response cache miss for source.
func RecordCacheMiss(source string) {
	CacheMissesTotal.WithLabelValues(source).Inc()
}

// RecordCacheOperation records a cache operation's duration.
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordSync records a completed sync run's terminal status and duration,
// and advances LastSuccessfulSync on COMPLETED.
func RecordSync(source, workflow, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(source, workflow, status).Inc()
	SyncDuration.WithLabelValues(source, workflow).Observe(duration)

	if status == "COMPLETED" {
		LastSuccessfulSync.WithLabelValues(source).SetToCurrentTime()
	}
}

// RecordSyncRecords records per-run processed/skipped counters.
func RecordSyncRecords(source, workflow string, processed int, skipped map[string]int) {
	RecordsProcessedTotal.WithLabelValues(source, workflow).Add(float64(processed))
	for kind, n := range skipped {
		RecordsSkippedTotal.WithLabelValues(source, workflow, kind).Add(float64(n))
	}
}

// RecordMerge records an entity merge performed by the resolver.
func RecordMerge(entityType string) {
	MergesTotal.WithLabelValues(entityType).Inc()
}

// RecordError records an error by component and taxonomy kind (spec.md §7).
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateIngestionStats updates the domain-size gauges.
func UpdateIngestionStats(players, teams, games, activeGames int64) {
	PlayersIngested.Set(float64(players))
	TeamsIngested.Set(float64(teams))
	GamesIngested.Set(float64(games))
	ActiveGames.Set(float64(activeGames))
}

// RecordAnalyticsRequest records an analytics engine call's duration.
func RecordAnalyticsRequest(operation string, duration float64) {
	AnalyticsRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordQueryRequest records a query facade call's duration.
func RecordQueryRequest(operation string, duration float64) {
	QueryRequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, route, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// RecordWorkerIteration records a scheduled job iteration.
func RecordWorkerIteration(job string, duration float64) {
	WorkerLoopIterations.WithLabelValues(job).Inc()
	WorkerLoopDuration.WithLabelValues(job).Observe(duration)
}
