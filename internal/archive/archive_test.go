package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func expectedNames(sensor dataset.Sensor) map[string]struct{} {
	out := map[string]struct{}{}
	for _, n := range testutil.Names(sensor) {
		out[n] = struct{}{}
	}
	return out
}

func TestPatchDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	s2 := testutil.Names(dataset.S2)
	s1 := testutil.Names(dataset.S1)
	testutil.WritePatchDir(t, root, s2[1], dataset.S2)
	testutil.WritePatchDir(t, root, s2[0], dataset.S2)
	testutil.WritePatchDir(t, root, s1[0], dataset.S1)
	require.NoError(t, os.Mkdir(filepath.Join(root, s2[2]+"_copy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, s2[3]), []byte("not a dir"), 0o600))

	got, err := PatchDirectories(root, dataset.S2)
	require.NoError(t, err)
	assert.Equal(t, []string{s2[0], s2[1]}, got)

	got, err = PatchDirectories(root, dataset.S1)
	require.NoError(t, err)
	assert.Equal(t, []string{s1[0]}, got)

	_, err = PatchDirectories(filepath.Join(root, "absent"), dataset.S2)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
	_, err = PatchDirectories(root, dataset.Sensor("S3"))
	assert.True(t, errors.IsValidation(err))
}

func TestFilesComplete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	name := testutil.Names(dataset.S2)[0]
	testutil.WritePatchDir(t, root, name, dataset.S2)
	assert.True(t, FilesComplete(root, name, dataset.S2))

	// an empty band is as bad as a missing one
	require.NoError(t, os.WriteFile(filepath.Join(root, name, name+"_B8A.tif"), nil, 0o600))
	assert.False(t, FilesComplete(root, name, dataset.S2))

	s1 := testutil.Names(dataset.S1)[0]
	testutil.WritePatchDir(t, root, s1, dataset.S1, "_VH.tif")
	assert.False(t, FilesComplete(root, s1, dataset.S1))
}

func TestValidateRootComplete(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, n := range testutil.Names(dataset.S1) {
		testutil.WritePatchDir(t, root, n, dataset.S1)
	}
	// unrelated entries are ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o600))

	var checked atomic.Int32
	report, err := ValidateRoot(t.Context(), root, dataset.S1, expectedNames(dataset.S1),
		WithWorkers(2), WithProgress(func() { checked.Add(1) }))
	require.NoError(t, err)
	assert.True(t, report.Complete())
	assert.Empty(t, report.Invalid())
	assert.Equal(t, len(testutil.FixturePatches), report.Expected)
	assert.Equal(t, int32(len(testutil.FixturePatches)), checked.Load())
}

func TestValidateRootReportsProblems(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	names := testutil.Names(dataset.S2)
	for _, n := range names[2:] {
		testutil.WritePatchDir(t, root, n, dataset.S2)
	}
	testutil.WritePatchDir(t, root, names[1], dataset.S2, "_labels_metadata.json")
	require.NoError(t, os.WriteFile(filepath.Join(root, names[2], names[2]+"_B01.tif"), nil, 0o600))

	report, err := ValidateRoot(t.Context(), root, dataset.S2, expectedNames(dataset.S2))
	require.NoError(t, err)
	assert.False(t, report.Complete())
	assert.Equal(t, []string{names[0]}, report.Missing)
	assert.ElementsMatch(t, []string{names[1], names[2]}, report.Incomplete)
	assert.ElementsMatch(t, []string{names[0], names[1], names[2]}, report.Invalid())
}

func TestValidateRootCancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, n := range testutil.Names(dataset.S2) {
		testutil.WritePatchDir(t, root, n, dataset.S2)
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := ValidateRoot(ctx, root, dataset.S2, expectedNames(dataset.S2))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestValidateRootMissingDir(t *testing.T) {
	t.Parallel()

	_, err := ValidateRoot(t.Context(), filepath.Join(t.TempDir(), "absent"), dataset.S2, expectedNames(dataset.S2))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
