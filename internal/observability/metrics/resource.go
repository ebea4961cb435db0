package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ResourceMetrics contains Prometheus metrics for lookup table loading and
// resource downloads. It implements Recorder.
type ResourceMetrics struct {
	registry *prometheus.Registry

	operationsTotal *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	rowsLoaded      *prometheus.GaugeVec
	bytesFetched    prometheus.Counter
}

// NewResourceMetrics creates and registers new resource metrics
func NewResourceMetrics(registry *prometheus.Registry) (*ResourceMetrics, error) {
	m := &ResourceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ResourceMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bencommon_resource_operations_total",
			Help: "Total number of resource operations",
		},
		[]string{"operation", "status"}, // status: success, error, cached, skipped
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bencommon_resource_errors_total",
			Help: "Total number of resource errors",
		},
		[]string{"operation", "error_type"},
	)

	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bencommon_resource_duration_seconds",
			Help: "Time taken to decompress and parse or download a resource",
			// 1ms to ~4s; the full correspondence table takes seconds to parse
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
		},
		[]string{"operation"},
	)

	m.rowsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bencommon_resource_rows",
			Help: "Number of rows parsed from each resource",
		},
		[]string{"resource"},
	)

	m.bytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bencommon_resource_fetched_bytes_total",
		Help: "Total number of bytes downloaded",
	})
}

// Describe implements the Collector interface
func (m *ResourceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.operationsTotal.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.duration.Describe(ch)
	m.rowsLoaded.Describe(ch)
	m.bytesFetched.Describe(ch)
}

// Collect implements the Collector interface
func (m *ResourceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.operationsTotal.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.duration.Collect(ch)
	m.rowsLoaded.Collect(ch)
	m.bytesFetched.Collect(ch)
}

// RecordOperation implements Recorder.
func (m *ResourceMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *ResourceMetrics) RecordDuration(operation string, seconds float64) {
	m.duration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *ResourceMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetRows records the row count of a loaded resource.
func (m *ResourceMetrics) SetRows(resource string, rows int) {
	m.rowsLoaded.WithLabelValues(resource).Set(float64(rows))
}

// AddFetchedBytes adds to the downloaded byte counter.
func (m *ResourceMetrics) AddFetchedBytes(n int64) {
	m.bytesFetched.Add(float64(n))
}
