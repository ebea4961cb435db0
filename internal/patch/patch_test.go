package patch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

const (
	s2Name = "S2A_MSIL2A_20170617T113321_4_55"
	s1Name = "S1A_IW_GRDH_1SDV_20170613T165043_33UUP_70_48"
)

func TestGrammars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		isS1 bool
		isS2 bool
	}{
		{"s2", s2Name, false, true},
		{"s2 single digit hour", "S2B_MSIL2A_20180525T94031_70_23", false, true},
		{"s2 invalid mission", "S2C_MSIL2A_20170617T113321_4_55", false, false},
		{"s2 trailing garbage", s2Name + "_B01.tif", false, false},
		{"s2 three digit row", "S2A_MSIL2A_20170617T113321_400_55", false, false},
		{"s1", s1Name, true, false},
		{"s1 single digit hour", "S1B_IW_GRDH_1SDV_20180504T93205_29SNC_1_9", true, false},
		{"s1 short tile", "S1A_IW_GRDH_1SDV_20170613T165043_33UU_70_48", false, false},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.isS1, IsS1(tt.in))
			assert.Equal(t, tt.isS2, IsS2(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id, err := Parse(s1Name)
	require.NoError(t, err)
	assert.Equal(t, ID{Sensor: dataset.S1, Raw: s1Name}, id)
	assert.Equal(t, s1Name, id.String())

	id, err = Parse(s2Name)
	require.NoError(t, err)
	assert.Equal(t, dataset.S2, id.Sensor)

	_, err = Parse("not-a-patch")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestFields(t *testing.T) {
	t.Parallel()

	id, err := Parse(s1Name)
	require.NoError(t, err)
	f, err := id.Fields()
	require.NoError(t, err)
	assert.Equal(t, "S1A", f.Mission)
	assert.Equal(t, "33UUP", f.Tile)
	assert.Equal(t, 70, f.Row)
	assert.Equal(t, 48, f.Col)
	assert.Equal(t, time.Date(2017, 6, 13, 16, 50, 43, 0, time.UTC), f.Acquisition)

	id, err = Parse("S2B_MSIL2A_20180525T94031_70_23")
	require.NoError(t, err)
	f, err = id.Fields()
	require.NoError(t, err)
	assert.Empty(t, f.Tile)
	assert.Equal(t, 9, f.Acquisition.Hour())
	assert.Equal(t, 40, f.Acquisition.Minute())

	_, err = ID{Sensor: dataset.S2, Raw: "S2A_MSIL2A_20171317T113321_4_55"}.Fields()
	assert.True(t, errors.IsValidation(err))
}

func TestBandOf(t *testing.T) {
	t.Parallel()

	band, ok := BandOf(dataset.S2, s2Name+"_B8A.tif")
	require.True(t, ok)
	assert.Equal(t, "B8A", band)

	band, ok = BandOf(dataset.S2, s2Name+"_B12.tif")
	require.True(t, ok)
	assert.Equal(t, "B12", band)

	band, ok = BandOf(dataset.S1, s1Name+"_VH.tif")
	require.True(t, ok)
	assert.Equal(t, "VH", band)

	_, ok = BandOf(dataset.S1, s1Name+"_labels_metadata.json")
	assert.False(t, ok)
}

func TestFileSuffixes(t *testing.T) {
	t.Parallel()

	s2 := FileSuffixes(dataset.S2)
	assert.Len(t, s2, 13)
	assert.Contains(t, s2, "_B8A.tif")
	assert.Contains(t, s2, "_B09.tif")
	assert.NotContains(t, s2, "_B10.tif")
	assert.Equal(t, MetadataSuffix, s2[len(s2)-1])

	assert.Equal(t, []string{"_VV.tif", "_VH.tif", "_labels_metadata.json"}, FileSuffixes(dataset.S1))
	assert.Equal(t, s2Name+"_labels_metadata.json", MetadataFile(s2Name))
}

func TestRoughRegexp(t *testing.T) {
	t.Parallel()

	assert.True(t, RoughRegexp.MatchString(s2Name))
	assert.True(t, RoughRegexp.MatchString("S2C_MSIL1C_20170617T113321_4_55"))
	assert.False(t, RoughRegexp.MatchString("README.md"))
}
