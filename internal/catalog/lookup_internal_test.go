package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/logger"
)

func TestOriginalSplitOfWarnsOnce(t *testing.T) {
	t.Parallel()

	const (
		s1 = "S1A_IW_GRDH_1SDV_20170613T165043_33UUP_0_45"
		s2 = "S2A_MSIL2A_20170613T101031_0_45"
	)
	c, err := NewFromTables(Tables{S1ToS2: map[string]string{s1: s2}})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	c.log = logger.NewSlogLogger(buf, logger.LogLevelWarn)

	for range 100 {
		split, err := c.OriginalSplitOf(s2)
		require.NoError(t, err)
		assert.Equal(t, dataset.SplitUnknown, split)
	}
	_, err = c.OriginalSplitOf(s1)
	require.NoError(t, err)

	assert.Equal(t, int64(101), c.UnsplitLookups())
	assert.Equal(t, 1, strings.Count(buf.String(), "not part of the original split"))
}
