// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	SalesRowsLoaded      prometheus.Counter
	DailyRecordsUpserted prometheus.Counter
	IngestErrors         *prometheus.CounterVec

	// Pipeline metrics
	PipelineRunsTotal  *prometheus.CounterVec
	PipelineDuration   prometheus.Histogram
	ForecastsPersisted prometheus.Counter
	ScenariosEvaluated prometheus.Counter
	ReportsGenerated   prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulPipeline  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "revenue_lab"
	}

	return &Metrics{
		SalesRowsLoaded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "sales_rows_loaded_total",
			Help:      "Total number of raw sales CSV rows loaded",
		}),
		DailyRecordsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "daily_records_upserted_total",
			Help:      "Total number of daily records upserted to storage",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by source",
		}, []string{"source"}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		ForecastsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "forecasts_persisted_total",
			Help:      "Total number of forecast rows persisted",
		}),
		ScenariosEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "scenarios_evaluated_total",
			Help:      "Total number of what-if scenarios evaluated",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of result cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of result cache misses",
		}),

		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSalesRowsLoaded adds to the raw sales row counter.
func RecordSalesRowsLoaded(n int) {
	DefaultMetrics.SalesRowsLoaded.Add(float64(n))
}

// RecordDailyRecordsUpserted adds to the upserted daily record counter.
func RecordDailyRecordsUpserted(n int) {
	DefaultMetrics.DailyRecordsUpserted.Add(float64(n))
}

// RecordIngestError records an ingestion error for the given source file kind.
func RecordIngestError(source string) {
	DefaultMetrics.IngestErrors.WithLabelValues(source).Inc()
}

// RecordPipelineRun records a pipeline run outcome and duration.
func RecordPipelineRun(status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(durationSeconds)
}

// RecordForecastsPersisted adds to the persisted forecast counter.
func RecordForecastsPersisted(n int) {
	DefaultMetrics.ForecastsPersisted.Add(float64(n))
}

// RecordScenarioEvaluated increments the scenario counter.
func RecordScenarioEvaluated() {
	DefaultMetrics.ScenariosEvaluated.Inc()
}

// RecordReportGenerated increments the report counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// MarkIngestionSuccess sets the last successful ingestion timestamp.
func MarkIngestionSuccess(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulIngestion.Set(unixSeconds)
}

// MarkPipelineSuccess sets the last successful pipeline timestamp.
func MarkPipelineSuccess(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulPipeline.Set(unixSeconds)
}
