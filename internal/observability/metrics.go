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
	FilesProcessed    prometheus.Counter
	RowsIngested      prometheus.Counter
	RowsDeduped       prometheus.Counter
	CellParseFailures *prometheus.CounterVec
	IngestionRuns     *prometheus.CounterVec
	IngestionDuration prometheus.Histogram

	// Analytics metrics
	RiskRuns       prometheus.Counter
	RiskDuration   prometheus.Histogram
	LedgerDays     prometheus.Gauge
	TablesExported *prometheus.CounterVec
	ReportsWritten prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bet_ledger"
	}

	return &Metrics{
		// Ingestion metrics
		FilesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "files_processed_total",
			Help:      "Total number of export files ingested",
		}),
		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_retained_total",
			Help:      "Total number of ledger rows retained after deduplication",
		}),
		RowsDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_deduped_total",
			Help:      "Total number of rows removed as duplicates",
		}),
		CellParseFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "cell_parse_failures_total",
			Help:      "Total number of non-empty cells that failed to parse, by field",
		}, []string{"field"}),
		IngestionRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "runs_total",
			Help:      "Total number of ingestion runs by status",
		}, []string{"status"}),
		IngestionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "duration_seconds",
			Help:      "Ingestion run duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Analytics metrics
		RiskRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "runs_total",
			Help:      "Total number of risk analytics computations",
		}),
		RiskDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "duration_seconds",
			Help:      "Risk analytics computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LedgerDays: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "ledger_days",
			Help:      "Number of distinct days in the last analysed series",
		}),
		TablesExported: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "tables_total",
			Help:      "Total number of summary tables exported by sink",
		}, []string{"sink"}),
		ReportsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "reports_written_total",
			Help:      "Total number of risk report bundles written",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordParseFailure counts a cell that could not be parsed.
func RecordParseFailure(field string) {
	DefaultMetrics.CellParseFailures.WithLabelValues(field).Inc()
}

// RecordFilesProcessed adds to the files processed counter.
func RecordFilesProcessed(n int) {
	DefaultMetrics.FilesProcessed.Add(float64(n))
}

// RecordRowsIngested adds retained and deduplicated row counts.
func RecordRowsIngested(retained, deduped int) {
	DefaultMetrics.RowsIngested.Add(float64(retained))
	DefaultMetrics.RowsDeduped.Add(float64(deduped))
}

// RecordIngestionRun records an ingestion run outcome.
func RecordIngestionRun(status string, durationSeconds float64) {
	DefaultMetrics.IngestionRuns.WithLabelValues(status).Inc()
	DefaultMetrics.IngestionDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
	}
}

// RecordRiskRun records a risk analytics computation.
func RecordRiskRun(days int, durationSeconds float64) {
	DefaultMetrics.RiskRuns.Inc()
	DefaultMetrics.RiskDuration.Observe(durationSeconds)
	DefaultMetrics.LedgerDays.Set(float64(days))
}

// RecordTablesExported counts summary tables handed to a sink.
func RecordTablesExported(sink string, n int) {
	DefaultMetrics.TablesExported.WithLabelValues(sink).Add(float64(n))
}

// RecordReportWritten counts a written report bundle.
func RecordReportWritten() {
	DefaultMetrics.ReportsWritten.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
