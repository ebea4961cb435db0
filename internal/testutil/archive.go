package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/patch"
)

// WritePatchDir creates root/name holding every file of sensor with a
// non-empty placeholder content, except the suffixes listed in skip.
func WritePatchDir(t testing.TB, root, name string, sensor dataset.Sensor, skip ...string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	for _, suffix := range patch.FileSuffixes(sensor) {
		if skipped[suffix] {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+suffix), []byte("x"), 0o600))
	}
	return dir
}
