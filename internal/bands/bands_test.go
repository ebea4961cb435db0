package bands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelGroups(t *testing.T) {
	t.Parallel()

	assert.Len(t, Channels, 12)
	assert.Equal(t, []string{"B02", "B03", "B04", "B05", "B06", "B07", "B08", "B8A", "B11", "B12"}, Channels10m20m)

	union := map[string]struct{}{}
	for _, group := range [][]string{Channels10m, Channels20m, Channels60m} {
		for _, b := range group {
			union[b] = struct{}{}
		}
	}
	assert.Len(t, union, len(Channels))
	for _, b := range Channels {
		assert.Contains(t, union, b)
		_, ok := StatsOf(b)
		assert.True(t, ok, b)
	}
}

func TestFloat32Stats(t *testing.T) {
	t.Parallel()

	s, ok := Float32StatsOf("B02")
	require.True(t, ok)
	assert.InDelta(t, 429.9430203/65535, s.Mean, 1e-12)
	assert.Less(t, s.Std, 1.0)

	_, ok = Float32StatsOf("B10")
	assert.False(t, ok)
}
