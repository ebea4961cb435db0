package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BuilderMetrics contains Prometheus metrics for the metadata builder.
// All methods are safe to call on a nil receiver.
type BuilderMetrics struct {
	registry *prometheus.Registry

	patchesTotal     *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	recordsSaved     *prometheus.CounterVec
	countryAssigned  *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
}

// NewBuilderMetrics creates and registers new builder metrics
func NewBuilderMetrics(registry *prometheus.Registry) (*BuilderMetrics, error) {
	m := &BuilderMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *BuilderMetrics) initMetrics() {
	m.patchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bencommon_builder_patches_total",
			Help: "Total number of patches processed by the builder",
		},
		[]string{"stage", "status"},
	)

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bencommon_builder_stage_duration_seconds",
			Help: "Time taken by each builder stage",
			// 100ms to ~100s per stage
			Buckets: prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount10),
		},
		[]string{"stage"},
	)

	m.recordsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bencommon_builder_records_saved_total",
			Help: "Total number of records written by the builder",
		},
		[]string{"backend"},
	)

	m.countryAssigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bencommon_builder_country_assignments_total",
			Help: "Number of patches assigned to each country",
		},
		[]string{"country"},
	)

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bencommon_builder_last_run_timestamp_seconds",
		Help: "Unix time of the last completed builder run",
	})
}

// Describe implements the Collector interface
func (m *BuilderMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.patchesTotal.Describe(ch)
	m.stageDuration.Describe(ch)
	m.recordsSaved.Describe(ch)
	m.countryAssigned.Describe(ch)
	m.lastRunTimestamp.Describe(ch)
}

// Collect implements the Collector interface
func (m *BuilderMetrics) Collect(ch chan<- prometheus.Metric) {
	m.patchesTotal.Collect(ch)
	m.stageDuration.Collect(ch)
	m.recordsSaved.Collect(ch)
	m.countryAssigned.Collect(ch)
	m.lastRunTimestamp.Collect(ch)
}

// RecordPatch counts a patch passing through a stage.
func (m *BuilderMetrics) RecordPatch(stage, status string) {
	if m == nil {
		return
	}
	m.patchesTotal.WithLabelValues(stage, status).Inc()
}

// ObserveStage records how long a stage took.
func (m *BuilderMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddRecordsSaved counts written records per backend (sqlite, mysql, csv).
func (m *BuilderMetrics) AddRecordsSaved(backend string, n int) {
	if m == nil {
		return
	}
	m.recordsSaved.WithLabelValues(backend).Add(float64(n))
}

// RecordCountry counts a country assignment.
func (m *BuilderMetrics) RecordCountry(country string) {
	if m == nil {
		return
	}
	m.countryAssigned.WithLabelValues(country).Inc()
}

// MarkRunCompleted sets the last run timestamp.
func (m *BuilderMetrics) MarkRunCompleted(t time.Time) {
	if m == nil {
		return
	}
	m.lastRunTimestamp.Set(float64(t.Unix()))
}
