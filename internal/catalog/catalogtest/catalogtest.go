// Package catalogtest builds catalogs over the miniature fixture archive.
package catalogtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/catalog"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/resource"
	"github.com/bigearthnet-go/bencommon/internal/testutil"
)

// Tables returns the fixture patches as catalog tables.
func Tables() catalog.Tables {
	t := catalog.Tables{
		S1ToS2:          map[string]string{},
		Countries:       map[string]dataset.Country{},
		Seasons:         map[string]dataset.Season{},
		Snowy:           map[string]struct{}{},
		CloudyOrShadowy: map[string]struct{}{},
		No19ClassTarget: map[string]struct{}{},
		Splits:          map[string]dataset.Split{},
	}
	for _, p := range testutil.FixturePatches {
		t.S1ToS2[p.S1] = p.S2
		t.Countries[p.S2] = p.Country
		t.Seasons[p.S2] = p.Season
		if p.Snowy {
			t.Snowy[p.S2] = struct{}{}
		}
		if p.Cloudy {
			t.CloudyOrShadowy[p.S2] = struct{}{}
		}
		if p.No19 {
			t.No19ClassTarget[p.S2] = struct{}{}
		}
		if p.Split.Valid() {
			t.Splits[p.S2] = p.Split
		}
	}
	return t
}

// New returns a catalog over in-memory fixture tables.
func New(t testing.TB) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewFromTables(Tables())
	require.NoError(t, err)
	return c
}

// NewFromResources returns a catalog reading the compressed fixture
// resources through a resource.Loader.
func NewFromResources(t testing.TB, opts ...resource.Option) *catalog.Catalog {
	t.Helper()
	return catalog.New(resource.NewDirLoader(testutil.ResourceDir(), opts...))
}
