package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// Load works on the global viper instance, so these tests do not run in
// parallel.

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.False(t, settings.Debug)
	assert.Empty(t, settings.Resources.Dir)
	assert.Equal(t, "EPSG:4326", settings.Builder.TargetCRS)
	assert.Equal(t, "EPSG:3035", settings.Builder.LocalCRS)
	assert.Equal(t, "sqlite", settings.Output.Type)
	assert.Equal(t, "ben_metadata.db", settings.Output.SQLite.Path)
	assert.Equal(t, 5*time.Minute, settings.Fetch.Timeout)
	assert.NotEmpty(t, settings.Fetch.CountriesURL)
	require.NotNil(t, settings.Logging.Console)
	assert.True(t, settings.Logging.Console.Enabled)

	assert.Same(t, settings, GetSettings())
	assert.Contains(t, ConfigFileUsed(), "config.yaml")
}

func TestLoadMergesConfigFile(t *testing.T) {
	path := writeConfig(t, `
resources:
  dir: /data/ben
builder:
  workers: 3
output:
  type: csv
  csv:
    path: out.csv
`)
	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/ben", settings.Resources.Dir)
	assert.Equal(t, 3, settings.Builder.Workers)
	assert.Equal(t, "csv", settings.Output.Type)
	assert.Equal(t, "out.csv", settings.Output.CSV.Path)
	// untouched keys keep their defaults
	assert.Equal(t, "EPSG:3035", settings.Builder.LocalCRS)

	dir, err := settings.ResourceDir()
	require.NoError(t, err)
	assert.Equal(t, "/data/ben", dir)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("BENCOMMON_RESOURCES_DIR", "/env/ben")
	t.Setenv("BENCOMMON_BUILDER_WORKERS", "5")

	settings, err := Load(writeConfig(t, "resources:\n  dir: /file/ben\n"))
	require.NoError(t, err)
	assert.Equal(t, "/env/ben", settings.Resources.Dir)
	assert.Equal(t, 5, settings.Builder.Workers)
}

func TestLoadValidationFailure(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad crs", "builder:\n  local_crs: WGS84\n", "LocalCRS"},
		{"too many workers", "builder:\n  workers: 1000\n", "Workers"},
		{"unknown output", "output:\n  type: parquet\n", "Type"},
		{"mysql without host", "output:\n  type: mysql\n  mysql:\n    host: \"\"\n", "output.mysql.host"},
		{"telemetry without dsn", "telemetry:\n  enabled: true\n", "DSN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestSaveYAMLConfigRoundTrip(t *testing.T) {
	settings, err := Load(writeConfig(t, "builder:\n  workers: 2\n"))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveYAMLConfig(out, settings))

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Builder.Workers)
	assert.Equal(t, settings.Output, reloaded.Output)
}

func TestValidateCRS(t *testing.T) {
	for crs, ok := range map[string]bool{
		"EPSG:4326":  true,
		"epsg:3035":  true,
		"EPSG:32633": true,
		"EPSG:":      false,
		"4326":       false,
		"WGS84":      false,
	} {
		assert.Equal(t, ok, crsPattern.MatchString(crs), crs)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	t.Setenv("LOCALAPPDATA", "/local")
	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, appDirName, filepath.Base(dir))

	settings := &Settings{}
	got, err := settings.ResourceDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestFindConfigFileNotFound(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if _, err := os.Stat("/etc/bencommon/config.yaml"); err == nil {
		t.Skip("system config present")
	}
	_, err := FindConfigFile()
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
