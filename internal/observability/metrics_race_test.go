package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
)

// TestNewMetricsConcurrency verifies that NewMetrics can be called concurrently
// without causing race conditions
func TestNewMetricsConcurrency(t *testing.T) {
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()

			m, err := NewMetrics()
			if !assert.NoError(t, err) {
				return
			}
			assert.NotNil(t, m.registry)
			assert.NotNil(t, m.Resource)
			assert.NotNil(t, m.Builder)
		}()
	}
	wg.Wait()
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	m.Resource.RecordOperation(metrics.OpLoadSet, metrics.StatusSuccess)
	m.Builder.AddRecordsSaved("csv", 3)

	path := filepath.Join(t.TempDir(), "bencommon.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bencommon_resource_operations_total{operation="load_set",status="success"} 1`)
	assert.Contains(t, string(data), `bencommon_builder_records_saved_total{backend="csv"} 3`)
}
