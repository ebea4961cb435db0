package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

func TestToSetOptions(t *testing.T) {
	t.Parallel()

	opts, err := (&options{sensor: "s2"}).toSetOptions()
	require.NoError(t, err)
	assert.Equal(t, dataset.S2, opts.Sensor)
	assert.Equal(t, dataset.AllSeasons(), opts.Seasons)
	assert.Equal(t, dataset.AllCountries(), opts.Countries)
	assert.True(t, opts.RemoveUnrecommended)

	opts, err = (&options{
		sensor:    "S1",
		seasons:   []string{"winter", "Fall"},
		countries: []string{"portugal"},
		all:       true,
	}).toSetOptions()
	require.NoError(t, err)
	assert.Equal(t, dataset.S1, opts.Sensor)
	assert.Equal(t, []dataset.Season{dataset.Winter, dataset.Fall}, opts.Seasons)
	assert.Equal(t, []dataset.Country{dataset.Portugal}, opts.Countries)
	assert.False(t, opts.RemoveUnrecommended)
}

func TestToSetOptionsRejectsUnknownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts options
	}{
		{"sensor", options{sensor: "s3"}},
		{"season", options{sensor: "s2", seasons: []string{"Monsoon"}}},
		{"country", options{sensor: "s2", countries: []string{"France"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.opts.toSetOptions()
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}
