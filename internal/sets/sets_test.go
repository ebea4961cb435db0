package sets

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/catalog/catalogtest"
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/testutil"
)

// untouchable fails the test on any lookup.
type untouchable struct{ t *testing.T }

func (u untouchable) CountryOf(string) (dataset.Country, error) {
	u.t.Fatal("unexpected lookup")
	return "", nil
}

func (u untouchable) SeasonOf(string) (dataset.Season, error) {
	u.t.Fatal("unexpected lookup")
	return "", nil
}

func (u untouchable) AllPatches(dataset.Sensor) (map[string]struct{}, error) {
	u.t.Fatal("unexpected lookup")
	return nil, nil
}

func (u untouchable) RecommendedPatches(dataset.Sensor) (map[string]struct{}, error) {
	u.t.Fatal("unexpected lookup")
	return nil, nil
}

func (u untouchable) SplitPatches(dataset.Sensor, dataset.Split) (map[string]struct{}, error) {
	u.t.Fatal("unexpected lookup")
	return nil, nil
}

func reversed(s []string) []string {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

func namesWhere(sensor dataset.Sensor, keep func(testutil.FixturePatch) bool) []string {
	var out []string
	for _, p := range testutil.FixturePatches {
		if !keep(p) {
			continue
		}
		if sensor == dataset.S1 {
			out = append(out, p.S1)
		} else {
			out = append(out, p.S2)
		}
	}
	return out
}

func setOf(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestFiltersPreserveInputOrder(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	for _, sensor := range dataset.AllSensors() {
		input := reversed(testutil.Names(sensor))

		got, err := FilterByCountry(cat, sensor, input, dataset.Austria)
		require.NoError(t, err)
		assert.Equal(t, reversed(namesWhere(sensor, func(p testutil.FixturePatch) bool {
			return p.Country == dataset.Austria
		})), got)

		got, err = FilterBySeason(cat, sensor, input, dataset.Winter)
		require.NoError(t, err)
		assert.Equal(t, reversed(namesWhere(sensor, func(p testutil.FixturePatch) bool {
			return p.Season == dataset.Winter
		})), got)

		got, err = FilterBySplit(cat, sensor, input, dataset.Train)
		require.NoError(t, err)
		assert.Equal(t, reversed(namesWhere(sensor, func(p testutil.FixturePatch) bool {
			return p.Split == dataset.Train
		})), got)
	}
}

func TestFilterKeepsDuplicates(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	p := testutil.FixturePatches[0]
	got, err := FilterByCountry(cat, dataset.S2, []string{p.S2, p.S2}, p.Country)
	require.NoError(t, err)
	assert.Equal(t, []string{p.S2, p.S2}, got)
}

func TestFilterEmptyInput(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	got, err := FilterBySeason(cat, dataset.S1, nil, dataset.Fall)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFiltersRejectInvalidValuesBeforeLookup(t *testing.T) {
	t.Parallel()

	cat := untouchable{t}
	names := testutil.Names(dataset.S2)

	_, err := FilterByCountry(cat, dataset.S2, names, dataset.Country("Germany"))
	assert.True(t, errors.IsValidation(err))
	_, err = FilterBySeason(cat, dataset.S2, names, dataset.Season("Monsoon"))
	assert.True(t, errors.IsValidation(err))
	_, err = FilterBySplit(cat, dataset.S2, names, dataset.SplitUnknown)
	assert.True(t, errors.IsValidation(err))
	_, err = FilterBySplit(cat, dataset.Sensor("S3"), names, dataset.Train)
	assert.True(t, errors.IsValidation(err))
	_, err = BuildSet(cat, Options{Sensor: dataset.S1, Countries: []dataset.Country{"Atlantis"}})
	assert.True(t, errors.IsValidation(err))
	_, err = BuildSet(cat, Options{Sensor: dataset.S1, Seasons: []dataset.Season{"Monsoon"}})
	assert.True(t, errors.IsValidation(err))
}

func TestFiltersRejectMixedSensors(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	mixed := []string{testutil.FixturePatches[0].S2, testutil.FixturePatches[1].S1}
	_, err := FilterByCountry(cat, dataset.S2, mixed, dataset.Austria)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = FilterBySplit(cat, dataset.S1, []string{"garbage"}, dataset.Test)
	assert.True(t, errors.IsValidation(err))
}

func TestFilterUnknownPatch(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	_, err := FilterByCountry(cat, dataset.S2, []string{"S2B_MSIL2A_20190101T101010_1_1"}, dataset.Austria)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// split membership is not a lookup, so strangers are simply dropped
	got, err := FilterBySplit(cat, dataset.S2, []string{"S2B_MSIL2A_20190101T101010_1_1"}, dataset.Train)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildSet(t *testing.T) {
	t.Parallel()

	cat := catalogtest.New(t)
	where := func(sensor dataset.Sensor, keep func(testutil.FixturePatch) bool) map[string]struct{} {
		return setOf(namesWhere(sensor, keep))
	}

	tests := []struct {
		name string
		opts Options
		keep func(testutil.FixturePatch) bool
	}{
		{
			name: "defaults select recommended patches",
			opts: DefaultOptions(dataset.S2),
			keep: testutil.FixturePatch.Recommended,
		},
		{
			name: "empty axes do not filter",
			opts: Options{Sensor: dataset.S2},
			keep: func(testutil.FixturePatch) bool { return true },
		},
		{
			name: "season union",
			opts: Options{Sensor: dataset.S2, Seasons: []dataset.Season{dataset.Winter, dataset.Fall}, RemoveUnrecommended: true},
			keep: func(p testutil.FixturePatch) bool {
				return p.Recommended() && (p.Season == dataset.Winter || p.Season == dataset.Fall)
			},
		},
		{
			name: "season then country",
			opts: Options{Sensor: dataset.S1, Seasons: []dataset.Season{dataset.Summer}, Countries: []dataset.Country{dataset.Portugal}, RemoveUnrecommended: true},
			keep: func(p testutil.FixturePatch) bool {
				return p.Recommended() && p.Season == dataset.Summer && p.Country == dataset.Portugal
			},
		},
		{
			name: "country only including unrecommended",
			opts: Options{Sensor: dataset.S1, Countries: []dataset.Country{dataset.Finland, dataset.Serbia}},
			keep: func(p testutil.FixturePatch) bool {
				return p.Country == dataset.Finland || p.Country == dataset.Serbia
			},
		},
		{
			name: "country without patches",
			opts: Options{Sensor: dataset.S2, Countries: []dataset.Country{dataset.Kosovo}},
			keep: func(testutil.FixturePatch) bool { return false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildSet(cat, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, where(tt.opts.Sensor, tt.keep), got)
		})
	}
}

func TestBuildSetAgainstCompressedResources(t *testing.T) {
	t.Parallel()

	got, err := BuildSet(catalogtest.NewFromResources(t), DefaultOptions(dataset.S1))
	require.NoError(t, err)
	assert.Equal(t, setOf(namesWhere(dataset.S1, testutil.FixturePatch.Recommended)), got)
}

func TestNaturalSort(t *testing.T) {
	t.Parallel()

	names := []string{
		"S2A_MSIL2A_20170613T101031_10_2",
		"S2A_MSIL2A_20170613T101031_9_2",
		"S2A_MSIL2A_20170613T101031_9_10",
		"S2A_MSIL2A_20170613T101031_1_45",
	}
	NaturalSort(names)
	assert.Equal(t, []string{
		"S2A_MSIL2A_20170613T101031_1_45",
		"S2A_MSIL2A_20170613T101031_9_2",
		"S2A_MSIL2A_20170613T101031_9_10",
		"S2A_MSIL2A_20170613T101031_10_2",
	}, names)
}

func TestWriteCSVSetsSeparateSplits(t *testing.T) {
	t.Parallel()

	prefix := filepath.Join(t.TempDir(), "ben_s2")
	paths, err := WriteCSVSets(catalogtest.New(t), prefix, DefaultOptions(dataset.S2), true)
	require.NoError(t, err)
	assert.Equal(t, []string{prefix + "_train.csv", prefix + "_validation.csv", prefix + "_test.csv"}, paths)

	train, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "S2A_MSIL2A_20170613T101031_0_45\n"+
		"S2A_MSIL2A_20170717T113321_12_3\n"+
		"S2B_MSIL2A_20170924T93020_5_8\n", string(train))

	val, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "S2A_MSIL2A_20170613T101031_0_46\n", string(val))

	test, err := os.ReadFile(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "S2B_MSIL2A_20180204T94151_10_2\n", string(test))
}

func TestWriteCSVSetsSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := Options{Sensor: dataset.S1, Countries: []dataset.Country{dataset.Ireland}}
	paths, err := WriteCSVSets(catalogtest.New(t), filepath.Join(dir, "ireland.csv"), opts, false)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "ireland.csv")}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "S1B_IW_GRDH_1SDV_20171002T063548_29UPU_9_77\n", string(data))
}

func TestWriteCSVSetsEmptySplit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := DefaultOptions(dataset.S2)
	opts.Countries = []dataset.Country{dataset.Portugal}
	_, err := WriteCSVSets(catalogtest.New(t), filepath.Join(dir, "pt"), opts, true)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCheckDisjoint(t *testing.T) {
	t.Parallel()

	err := checkDisjoint(map[dataset.Split][]string{
		dataset.Train:      {"a", "b"},
		dataset.Validation: {"c"},
		dataset.Test:       {"b"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsResource(err))

	assert.NoError(t, checkDisjoint(map[dataset.Split][]string{
		dataset.Train: {"a"}, dataset.Validation: {"b"}, dataset.Test: {"c"},
	}))
}
