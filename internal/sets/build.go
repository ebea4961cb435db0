package sets

import (
	"maps"
	"slices"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
)

// Options restricts BuildSet. Empty Seasons or Countries do not filter on
// that axis.
type Options struct {
	Sensor              dataset.Sensor
	Seasons             []dataset.Season
	Countries           []dataset.Country
	RemoveUnrecommended bool
}

// DefaultOptions selects every recommended patch of sensor.
func DefaultOptions(sensor dataset.Sensor) Options {
	return Options{
		Sensor:              sensor,
		Seasons:             dataset.AllSeasons(),
		Countries:           dataset.AllCountries(),
		RemoveUnrecommended: true,
	}
}

// Validate rejects values outside the closed domains.
func (o Options) Validate() error {
	if !o.Sensor.Valid() {
		return invalid("sensor", string(o.Sensor))
	}
	for _, s := range o.Seasons {
		if !s.Valid() {
			return invalid("season", string(s))
		}
	}
	for _, c := range o.Countries {
		if !c.Valid() {
			return invalid("country", string(c))
		}
	}
	return nil
}

// BuildSet selects the recommended (or all) patches of the sensor, then keeps
// the union over the requested seasons and finally the union over the
// requested countries. The result is unordered.
func BuildSet(cat Catalog, opts Options) (map[string]struct{}, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		base map[string]struct{}
		err  error
	)
	if opts.RemoveUnrecommended {
		base, err = cat.RecommendedPatches(opts.Sensor)
	} else {
		base, err = cat.AllPatches(opts.Sensor)
	}
	if err != nil {
		return nil, err
	}

	if len(opts.Seasons) > 0 {
		names := slices.Collect(maps.Keys(base))
		base = make(map[string]struct{})
		for _, season := range opts.Seasons {
			kept, err := FilterBySeason(cat, opts.Sensor, names, season)
			if err != nil {
				return nil, err
			}
			addAll(base, kept)
		}
	}

	if len(opts.Countries) > 0 {
		names := slices.Collect(maps.Keys(base))
		base = make(map[string]struct{})
		for _, country := range opts.Countries {
			kept, err := FilterByCountry(cat, opts.Sensor, names, country)
			if err != nil {
				return nil, err
			}
			addAll(base, kept)
		}
	}
	return base, nil
}

func addAll(set map[string]struct{}, names []string) {
	for _, n := range names {
		set[n] = struct{}{}
	}
}
