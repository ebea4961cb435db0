package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

func TestSeasonFromMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month int
		want  Season
	}{
		{12, Winter}, {1, Winter}, {2, Winter},
		{3, Spring}, {4, Spring}, {5, Spring},
		{6, Summer}, {7, Summer}, {8, Summer},
		{9, Fall}, {10, Fall}, {11, Fall},
	}

	for _, tt := range tests {
		got, err := SeasonFromMonth(tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "month %d", tt.month)
	}

	for _, bad := range []int{0, 13, -1} {
		_, err := SeasonFromMonth(bad)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestParseEnums(t *testing.T) {
	t.Parallel()

	c, err := ParseCountry("portugal")
	require.NoError(t, err)
	assert.Equal(t, Portugal, c)
	assert.Equal(t, "PT", c.ISOA2())

	_, err = ParseCountry("Germany")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	s, err := ParseSeason("Autumn")
	require.NoError(t, err)
	assert.Equal(t, Fall, s)

	_, err = ParseSeason("Monsoon")
	assert.True(t, errors.IsValidation(err))

	sp, err := ParseSplit("val")
	require.NoError(t, err)
	assert.Equal(t, Validation, sp)

	sensor, err := ParseSensor("sentinel-1")
	require.NoError(t, err)
	assert.Equal(t, S1, sensor)

	_, err = ParseSensor("S3")
	assert.True(t, errors.IsValidation(err))
}

func TestCountryDomain(t *testing.T) {
	t.Parallel()

	require.Len(t, AllCountries(), 10)
	for _, c := range AllCountries() {
		assert.True(t, c.Valid())
		back, ok := CountryFromISOA2(c.ISOA2())
		require.True(t, ok)
		assert.Equal(t, c, back)
	}
	assert.False(t, Country("Germany").Valid())

	kosovo, ok := CountryFromISOA2("xk")
	require.True(t, ok)
	assert.Equal(t, Kosovo, kosovo)
}

func TestSplitString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", SplitUnknown.String())
	assert.Equal(t, "train", Train.String())
	assert.False(t, SplitUnknown.Valid())
	assert.Len(t, AllSplits(), 3)
}

func TestRecommendedSizeIdentity(t *testing.T) {
	t.Parallel()

	got := CompleteSize - SnowyPatchesCount - CloudyOrShadowyCount - No19ClassTargetCount + ExclusionOverlapCorrection
	assert.Equal(t, RecommendedSize, got)
	assert.Equal(t, CompleteSize, RecommendedSize+SnowyPatchesCount+CloudyOrShadowyCount+No19ClassTargetCount-2)
}
