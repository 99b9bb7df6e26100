package prometheus

import (
	"fmt"
	"time"
)

// Namespace is the metric prefix for all pipeline metrics.
const Namespace = "reggap"

// AppMetrics holds the application metric handles.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis pipeline
	DocumentsAnalyzedTotal CounterVec
	ClausesExtractedTotal  CounterVec
	AmbiguitiesFoundTotal  CounterVec
	GapsFoundTotal         CounterVec
	PipelineStageDuration  HistogramVec
	ReportsGeneratedTotal  CounterVec
	EnforcementScenarios   CounterVec
	ActiveBatchWorkers     GaugeVec

	// Infrastructure
	DBQueryDuration  HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	QueueDepth       GaugeVec
	ErrorsTotal      CounterVec

	// System health
	HealthCheckStatus GaugeVec
}

// Default histogram buckets.
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultStageDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 120}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers the application metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	m.DocumentsAnalyzedTotal = collector.RegisterCounter("documents_analyzed_total", "Documents analyzed")
	m.ClausesExtractedTotal = collector.RegisterCounter("clauses_extracted_total", "Clauses extracted")
	m.AmbiguitiesFoundTotal = collector.RegisterCounter("ambiguities_found_total", "Ambiguity instances found")
	m.GapsFoundTotal = collector.RegisterCounter("gaps_found_total", "Jurisdictional gaps found")
	m.PipelineStageDuration = collector.RegisterHistogram("pipeline_stage_duration_seconds", "Pipeline stage duration", DefaultStageDurationBuckets, "stage")
	m.ReportsGeneratedTotal = collector.RegisterCounter("reports_generated_total", "Compliance reports generated", "format")
	m.EnforcementScenarios = collector.RegisterCounter("enforcement_scenarios_total", "Enforcement scenarios modeled", "likelihood")
	m.ActiveBatchWorkers = collector.RegisterGauge("active_batch_workers", "Active batch analysis workers")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.QueueDepth = collector.RegisterGauge("mq_depth", "Message queue depth", "queue")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDBQuery records one database query.
func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error").Inc()
	}
}

// RecordCacheAccess records a cache hit or miss.
func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// PipelineRecorder adapts AppMetrics to the analysis pipeline's metrics
// port. It implements analysis.PipelineMetrics without the package
// importing prometheus.
type PipelineRecorder struct {
	metrics *AppMetrics
}

// NewPipelineRecorder wraps AppMetrics for the pipeline.
func NewPipelineRecorder(metrics *AppMetrics) *PipelineRecorder {
	return &PipelineRecorder{metrics: metrics}
}

func (r *PipelineRecorder) ObserveStageDuration(stage string, d time.Duration) {
	r.metrics.PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *PipelineRecorder) AddDocumentsAnalyzed(n int) {
	r.metrics.DocumentsAnalyzedTotal.WithLabelValues().Add(float64(n))
}

func (r *PipelineRecorder) AddClausesExtracted(n int) {
	r.metrics.ClausesExtractedTotal.WithLabelValues().Add(float64(n))
}

func (r *PipelineRecorder) AddGapsFound(n int) {
	r.metrics.GapsFoundTotal.WithLabelValues().Add(float64(n))
}

func (r *PipelineRecorder) AddAmbiguityInstances(n int) {
	r.metrics.AmbiguitiesFoundTotal.WithLabelValues().Add(float64(n))
}
