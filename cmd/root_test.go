package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/cmd/cmdutil"
	"github.com/bigearthnet-go/bencommon/internal/buildinfo"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/testutil"
)

// The commands load settings through the global viper instance, so these
// tests do not run in parallel.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("debug: false\n"), 0o600))

	var out bytes.Buffer
	root := RootCommand(cmdutil.NewEnv(buildinfo.NewContext("1.0.0", "today")))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath, "--data-dir", testutil.ResourceDir()}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestDescribeCommand(t *testing.T) {
	p := testutil.FixturePatches[0]
	out, err := execute(t, "describe", p.S2, testutil.FixturePatches[3].S1)
	require.NoError(t, err)
	assert.Contains(t, out, p.S1)
	assert.Contains(t, out, "Austria")
	assert.Contains(t, out, "train")
	assert.Contains(t, out, "Finland")

	_, err = execute(t, "describe", "not-a-patch")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSetsCommand(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "austria")
	out, err := execute(t, "sets", prefix, "--country", "Austria", "--no-split")
	require.NoError(t, err)
	assert.Equal(t, prefix+".csv", strings.TrimSpace(out))

	data, err := os.ReadFile(prefix + ".csv")
	require.NoError(t, err)
	var want []string
	for _, p := range testutil.FixturePatches {
		if p.Country == dataset.Austria && p.Recommended() {
			want = append(want, p.S2)
		}
	}
	assert.ElementsMatch(t, want, strings.Fields(string(data)))
}

func TestValidateCommandReportsMissingPatches(t *testing.T) {
	out, err := execute(t, "validate", "s1", t.TempDir(), "--progress=false")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, out, testutil.FixturePatches[0].S1)
	assert.Contains(t, out, "missing")
}

func TestValidateCommandRejectsUnknownSensor(t *testing.T) {
	_, err := execute(t, "validate", "s3", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestConstantsCommandSkipsInitialization(t *testing.T) {
	var out bytes.Buffer
	root := RootCommand(cmdutil.NewEnv(buildinfo.NewContext("1.0.0", "today")))
	root.SetOut(&out)
	// a missing config file would fail initialization
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "constants", "sizes"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "519284")
}

func TestMissingConfigFileFails(t *testing.T) {
	var out bytes.Buffer
	root := RootCommand(cmdutil.NewEnv(buildinfo.NewContext("1.0.0", "today")))
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "describe", testutil.FixturePatches[0].S2})
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	root := RootCommand(cmdutil.NewEnv(buildinfo.NewContext("1.0.0", "today")))
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1.0.0 (built today)")
}
