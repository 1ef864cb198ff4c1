// Package metrics provides Prometheus metrics for the LakeMapper pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Ingest metrics
	contourFeaturesLoaded prometheus.Counter
	surveyFeaturesLoaded  prometheus.Counter
	invalidIdentifiers    *prometheus.CounterVec

	// Matching metrics
	lakesMatched     prometheus.Gauge
	unmatchedByLayer *prometheus.GaugeVec
	duplicateSurveys prometheus.Counter
	disjointOutlines prometheus.Counter

	// Merge and aggregation metrics
	lakesAdmitted         prometheus.Counter
	lakesRejectedArea     prometheus.Counter
	lakesRejectedGeometry prometheus.Counter
	geometryRepairs       prometheus.Counter
	mergeLatency          prometheus.Histogram

	// Worker metrics
	activeWorkers prometheus.Gauge
	queueSize     prometheus.Gauge

	// Export metrics
	filesExported prometheus.Counter
	exportLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lakemapper",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.contourFeaturesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "contour_features_loaded_total",
		Help:      "Total number of bathymetry contour features loaded",
	})

	m.surveyFeaturesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "survey_features_loaded_total",
		Help:      "Total number of fish survey features loaded",
	})

	m.invalidIdentifiers = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "invalid_identifiers_total",
			Help:      "Total number of features with invalid lake identifiers by layer",
		},
		[]string{"layer"},
	)

	m.lakesMatched = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lakes_matched",
		Help:      "Number of lakes present in both input layers",
	})

	m.unmatchedByLayer = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "lakes_unmatched",
			Help:      "Number of lakes present in only one input layer",
		},
		[]string{"layer"},
	)

	m.duplicateSurveys = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_surveys_total",
		Help:      "Total number of lakes with more than one survey record",
	})

	m.disjointOutlines = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "disjoint_outlines_total",
		Help:      "Total number of lakes whose merged geometry is disjoint from the survey outline",
	})

	m.lakesAdmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lakes_admitted_total",
		Help:      "Total number of lakes admitted to export",
	})

	m.lakesRejectedArea = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lakes_rejected_area_total",
		Help:      "Total number of lakes rejected by the area admission filter",
	})

	m.lakesRejectedGeometry = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lakes_rejected_geometry_total",
		Help:      "Total number of lakes excluded due to unrepairable geometry",
	})

	m.geometryRepairs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geometry_repairs_total",
		Help:      "Total number of successful validity-fixing passes during merge",
	})

	m.mergeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "merge_latency_milliseconds",
		Help:      "Histogram of per-lake merge and aggregation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.activeWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_workers",
		Help:      "Current number of merge workers",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_size",
		Help:      "Current number of queued lake jobs",
	})

	m.filesExported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "files_exported_total",
		Help:      "Total number of output files written",
	})

	m.exportLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_latency_milliseconds",
		Help:      "Histogram of per-lake export latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordContourFeaturesLoaded adds to the contour feature count.
func RecordContourFeaturesLoaded(n int) {
	globalManager.contourFeaturesLoaded.Add(float64(n))
}

// RecordSurveyFeaturesLoaded adds to the survey feature count.
func RecordSurveyFeaturesLoaded(n int) {
	globalManager.surveyFeaturesLoaded.Add(float64(n))
}

// RecordInvalidIdentifier increments the invalid identifier count for a layer.
func RecordInvalidIdentifier(layer string) {
	globalManager.invalidIdentifiers.WithLabelValues(layer).Inc()
}

// UpdateLakesMatched sets the matched lake count.
func UpdateLakesMatched(n int) {
	globalManager.lakesMatched.Set(float64(n))
}

// UpdateUnmatched sets the unmatched lake count for a layer.
func UpdateUnmatched(layer string, n int) {
	globalManager.unmatchedByLayer.WithLabelValues(layer).Set(float64(n))
}

// RecordDuplicateSurvey increments the duplicate survey count.
func RecordDuplicateSurvey() {
	globalManager.duplicateSurveys.Inc()
}

// RecordDisjointOutline increments the disjoint outline warning count.
func RecordDisjointOutline() {
	globalManager.disjointOutlines.Inc()
}

// RecordLakeAdmitted increments the admitted lake count.
func RecordLakeAdmitted() {
	globalManager.lakesAdmitted.Inc()
}

// RecordLakeRejectedArea increments the area rejection count.
func RecordLakeRejectedArea() {
	globalManager.lakesRejectedArea.Inc()
}

// RecordLakeRejectedGeometry increments the geometry rejection count.
func RecordLakeRejectedGeometry() {
	globalManager.lakesRejectedGeometry.Inc()
}

// RecordGeometryRepair increments the successful repair count.
func RecordGeometryRepair() {
	globalManager.geometryRepairs.Inc()
}

// RecordMergeLatency records a per-lake merge latency sample.
func RecordMergeLatency(latencyMs float64) {
	globalManager.mergeLatency.Observe(latencyMs)
}

// UpdateActiveWorkers sets the worker gauge.
func UpdateActiveWorkers(n int) {
	globalManager.activeWorkers.Set(float64(n))
}

// UpdateQueueSize sets the job queue gauge.
func UpdateQueueSize(n int) {
	globalManager.queueSize.Set(float64(n))
}

// RecordFileExported increments the exported file count.
func RecordFileExported() {
	globalManager.filesExported.Inc()
}

// RecordExportLatency records a per-lake export latency sample.
func RecordExportLatency(latencyMs float64) {
	globalManager.exportLatency.Observe(latencyMs)
}

// Handler returns an HTTP handler serving the custom registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
