// Package observability wires the Prometheus collectors of bencommon into a
// single registry.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Resource *metrics.ResourceMetrics
	Builder  *metrics.BuilderMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	resourceMetrics, err := metrics.NewResourceMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource metrics: %w", err)
	}

	builderMetrics, err := metrics.NewBuilderMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create builder metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Resource: resourceMetrics,
		Builder:  builderMetrics,
	}, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metric values in the text exposition
// format, suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	log.Debug("metrics written", logger.String("path", path))
	return nil
}
