// Package sets selects subsets of BigEarthNet patches by country, season and
// original split and writes them as CSV files.
package sets

import (
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/patch"
)

// Catalog is the subset of *catalog.Catalog the filters need.
type Catalog interface {
	CountryOf(name string) (dataset.Country, error)
	SeasonOf(name string) (dataset.Season, error)
	AllPatches(sensor dataset.Sensor) (map[string]struct{}, error)
	RecommendedPatches(sensor dataset.Sensor) (map[string]struct{}, error)
	SplitPatches(sensor dataset.Sensor, split dataset.Split) (map[string]struct{}, error)
}

// FilterByCountry returns the patches of country, in input order.
func FilterByCountry(cat Catalog, sensor dataset.Sensor, patches []string, country dataset.Country) ([]string, error) {
	if !country.Valid() {
		return nil, invalid("country", string(country))
	}
	return filter(sensor, patches, func(name string) (bool, error) {
		c, err := cat.CountryOf(name)
		return c == country, err
	})
}

// FilterBySeason returns the patches acquired in season, in input order.
func FilterBySeason(cat Catalog, sensor dataset.Sensor, patches []string, season dataset.Season) ([]string, error) {
	if !season.Valid() {
		return nil, invalid("season", string(season))
	}
	return filter(sensor, patches, func(name string) (bool, error) {
		s, err := cat.SeasonOf(name)
		return s == season, err
	})
}

// FilterBySplit returns the patches of the original split, in input order.
// Patches outside every split are dropped.
func FilterBySplit(cat Catalog, sensor dataset.Sensor, patches []string, split dataset.Split) ([]string, error) {
	if !split.Valid() {
		return nil, invalid("split", string(split))
	}
	if !sensor.Valid() {
		return nil, invalid("sensor", string(sensor))
	}
	members, err := cat.SplitPatches(sensor, split)
	if err != nil {
		return nil, err
	}
	return filter(sensor, patches, func(name string) (bool, error) {
		_, ok := members[name]
		return ok, nil
	})
}

// filter keeps the patches accepted by keep. Every patch must be a name of
// sensor.
func filter(sensor dataset.Sensor, patches []string, keep func(string) (bool, error)) ([]string, error) {
	if !sensor.Valid() {
		return nil, invalid("sensor", string(sensor))
	}
	out := make([]string, 0, len(patches))
	for _, name := range patches {
		if s, ok := patch.SensorOf(name); !ok || s != sensor {
			return nil, errors.Newf("%q is not a %s patch name", name, sensor).
				Component("sets").
				Category(errors.CategoryValidation).
				Context("patch", name).
				Context("sensor", string(sensor)).
				Build()
		}
		ok, err := keep(name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func invalid(kind, value string) error {
	return errors.Newf("invalid %s %q", kind, value).
		Component("sets").
		Category(errors.CategoryValidation).
		Context(kind, value).
		Build()
}
