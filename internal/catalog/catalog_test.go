package catalog_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/catalog"
	"github.com/bigearthnet-go/bencommon/internal/catalog/catalogtest"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/resource"
	"github.com/bigearthnet-go/bencommon/internal/testutil"
)

const (
	austriaS2 = "S2A_MSIL2A_20170613T101031_0_45"
	austriaS1 = "S1A_IW_GRDH_1SDV_20170613T165043_33UUP_0_45"
	snowyS2   = "S2A_MSIL2A_20171208T93041_2_10"
	snowyS1   = "S1A_IW_GRDH_1SDV_20171208T162020_34VFN_2_10"
	cloudyS1  = "S1B_IW_GRDH_1SDV_20171002T063548_29UPU_9_77"
	no19S2    = "S2A_MSIL2A_20180413T95032_1_20"
	no19S1    = "S1A_IW_GRDH_1SDV_20180413T044210_34TDN_1_20"
	// well formed, but not part of the archive
	strangerS2 = "S2B_MSIL2A_20190101T101010_1_1"
	strangerS1 = "S1B_IW_GRDH_1SDV_20190101T101010_33UUP_1_1"
)

// backends runs every lookup test against in-memory tables and against the
// compressed fixture resources.
func backends(t *testing.T) map[string]*catalog.Catalog {
	t.Helper()
	return map[string]*catalog.Catalog{
		"tables":    catalogtest.New(t),
		"resources": catalogtest.NewFromResources(t),
	}
}

func TestCorrespondenceIsABijection(t *testing.T) {
	t.Parallel()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s1s, err := c.AllPatches(dataset.S1)
			require.NoError(t, err)
			s2s, err := c.AllPatches(dataset.S2)
			require.NoError(t, err)
			require.Len(t, s1s, len(testutil.FixturePatches))
			require.Len(t, s2s, len(testutil.FixturePatches))

			for s1 := range s1s {
				s2, err := c.S1ToS2(s1)
				require.NoError(t, err)
				assert.Contains(t, s2s, s2)
				back, err := c.S2ToS1(s2)
				require.NoError(t, err)
				assert.Equal(t, s1, back)
			}
		})
	}
}

func TestUnknownPatchNames(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)

	_, err := c.S1ToS2(strangerS1)
	assert.True(t, errors.IsNotFound(err))
	_, err = c.S2ToS1(strangerS2)
	assert.True(t, errors.IsNotFound(err))
	// the S2 name is not an S1 key
	_, err = c.S1ToS2(austriaS2)
	assert.True(t, errors.IsNotFound(err))

	_, err = c.CountryOf(strangerS2)
	assert.True(t, errors.IsNotFound(err))
	_, err = c.SeasonOf(strangerS1)
	assert.True(t, errors.IsNotFound(err))

	for _, bad := range []string{"", "foo", austriaS2 + "_B01.tif", "S2A_MSIL1C_20170613T101031_0_45"} {
		_, err = c.CountryOf(bad)
		assert.True(t, errors.IsNotFound(err), bad)
		assert.False(t, errors.IsValidation(err), bad)
		_, err = c.SeasonOf(bad)
		assert.True(t, errors.IsNotFound(err), bad)
		assert.False(t, errors.IsValidation(err), bad)
		_, err = c.Counterpart(bad)
		assert.True(t, errors.IsNotFound(err), bad)
	}
}

func TestCountryAndSeasonAgreeAcrossSensors(t *testing.T) {
	t.Parallel()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range testutil.FixturePatches {
				for _, n := range []string{p.S1, p.S2} {
					country, err := c.CountryOf(n)
					require.NoError(t, err)
					assert.Equal(t, p.Country, country, n)

					season, err := c.SeasonOf(n)
					require.NoError(t, err)
					assert.Equal(t, p.Season, season, n)
				}
			}
		})
	}
}

func TestCounterpart(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)
	got, err := c.Counterpart(austriaS1)
	require.NoError(t, err)
	assert.Equal(t, austriaS2, got)
	got, err = c.Counterpart(austriaS2)
	require.NoError(t, err)
	assert.Equal(t, austriaS1, got)
}

func TestOriginalSplitOf(t *testing.T) {
	t.Parallel()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range testutil.FixturePatches {
				for _, n := range []string{p.S1, p.S2} {
					split, err := c.OriginalSplitOf(n)
					require.NoError(t, err)
					assert.Equal(t, p.Split, split, n)
				}
			}

			// unknown and malformed names are reported, not rejected
			for _, n := range []string{strangerS1, strangerS2, "foo"} {
				split, err := c.OriginalSplitOf(n)
				require.NoError(t, err)
				assert.Equal(t, dataset.SplitUnknown, split)
				assert.Equal(t, "unknown", split.String())
			}
		})
	}
}

func TestExclusionPredicates(t *testing.T) {
	t.Parallel()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range testutil.FixturePatches {
				for _, n := range []string{p.S1, p.S2} {
					snowy, err := c.IsSnowy(n)
					require.NoError(t, err)
					assert.Equal(t, p.Snowy, snowy, n)

					cloudy, err := c.IsCloudyOrShadowy(n)
					require.NoError(t, err)
					assert.Equal(t, p.Cloudy, cloudy, n)

					has19, err := c.Has19ClassTarget(n)
					require.NoError(t, err)
					assert.Equal(t, !p.No19, has19, n)
				}
			}
		})
	}
}

func TestExclusionPredicatesOnStrangers(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)
	for _, n := range []string{strangerS1, strangerS2, "foo", ""} {
		snowy, err := c.IsSnowy(n)
		require.NoError(t, err)
		assert.False(t, snowy)

		cloudy, err := c.IsCloudyOrShadowy(n)
		require.NoError(t, err)
		assert.False(t, cloudy)

		has19, err := c.Has19ClassTarget(n)
		require.NoError(t, err)
		assert.True(t, has19)
	}
}

func TestRecommendedPatches(t *testing.T) {
	t.Parallel()

	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, sensor := range dataset.AllSensors() {
				got, err := c.RecommendedPatches(sensor)
				require.NoError(t, err)

				want := map[string]struct{}{}
				for _, p := range testutil.FixturePatches {
					if !p.Recommended() {
						continue
					}
					if sensor == dataset.S1 {
						want[p.S1] = struct{}{}
					} else {
						want[p.S2] = struct{}{}
					}
				}
				assert.Equal(t, want, got)
				assert.NotContains(t, got, snowyS1)
				assert.NotContains(t, got, snowyS2)
				assert.NotContains(t, got, no19S1)
				assert.NotContains(t, got, cloudyS1)
			}
		})
	}
}

func TestSplitPatches(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)
	train, err := c.SplitPatches(dataset.S2, dataset.Train)
	require.NoError(t, err)
	assert.Len(t, train, 3)
	assert.Contains(t, train, austriaS2)

	val, err := c.SplitPatches(dataset.S1, dataset.Validation)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"S1A_IW_GRDH_1SDV_20170613T165043_33UUP_0_46": {}}, val)

	_, err = c.SplitPatches(dataset.S2, dataset.SplitUnknown)
	assert.True(t, errors.IsValidation(err))
	_, err = c.AllPatches(dataset.Sensor("S3"))
	assert.True(t, errors.IsValidation(err))
}

func TestAllPatchesReturnsCopies(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)
	all, err := c.AllPatches(dataset.S2)
	require.NoError(t, err)
	delete(all, austriaS2)

	again, err := c.AllPatches(dataset.S2)
	require.NoError(t, err)
	assert.Contains(t, again, austriaS2)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	c := catalogtest.New(t)
	infos, err := c.Describe(austriaS1, no19S2)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, catalog.PatchInfo{
		S1Name:           austriaS1,
		S2Name:           austriaS2,
		Split:            dataset.Train,
		Country:          dataset.Austria,
		Season:           dataset.Summer,
		Has19ClassTarget: true,
	}, infos[0])
	assert.Equal(t, no19S1, infos[1].S1Name)
	assert.Equal(t, dataset.Serbia, infos[1].Country)
	assert.Equal(t, dataset.SplitUnknown, infos[1].Split)
	assert.False(t, infos[1].Has19ClassTarget)

	_, err = c.Describe("not-a-patch")
	assert.True(t, errors.IsValidation(err))
	_, err = c.Describe(strangerS2)
	assert.True(t, errors.IsNotFound(err))
}

func TestNewFromTablesRejectsNonBijection(t *testing.T) {
	t.Parallel()

	tables := catalogtest.Tables()
	tables.S1ToS2[strangerS1] = austriaS2
	_, err := catalog.NewFromTables(tables)
	require.Error(t, err)
	assert.True(t, errors.IsResource(err))
}

func TestNewFromTablesAcceptsNilTables(t *testing.T) {
	t.Parallel()

	c, err := catalog.NewFromTables(catalog.Tables{S1ToS2: map[string]string{austriaS1: austriaS2}})
	require.NoError(t, err)
	snowy, err := c.IsSnowy(austriaS1)
	require.NoError(t, err)
	assert.False(t, snowy)
	_, err = c.CountryOf(austriaS1)
	assert.True(t, errors.IsNotFound(err))
}

func TestPatchGrammarReexports(t *testing.T) {
	t.Parallel()

	assert.True(t, catalog.IsS1Patch(austriaS1))
	assert.False(t, catalog.IsS1Patch(austriaS2))
	assert.True(t, catalog.IsS2Patch(austriaS2))
	assert.False(t, catalog.IsS2Patch(austriaS1))
}

func TestMissingResourcesSurface(t *testing.T) {
	t.Parallel()

	c := catalog.New(resource.NewDirLoader(t.TempDir()))
	_, err := c.CountryOf(austriaS2)
	require.Error(t, err)
	assert.True(t, errors.IsResource(err))
	_, err = c.IsSnowy(austriaS2)
	assert.True(t, errors.IsResource(err))
	assert.Error(t, c.Preload())
}

func TestPreloadAndConcurrentUse(t *testing.T) {
	t.Parallel()

	c := catalogtest.NewFromResources(t)
	var wg sync.WaitGroup
	for _, p := range testutil.FixturePatches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			country, err := c.CountryOf(p.S1)
			assert.NoError(t, err)
			assert.Equal(t, p.Country, country)
		}()
	}
	wg.Wait()
	require.NoError(t, c.Preload())
}
