package catalog

import (
	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/patch"
)

// S1ToS2 returns the Sentinel-2 name of a Sentinel-1 patch.
func (c *Catalog) S1ToS2(s1Name string) (string, error) {
	corr, err := c.corr.get()
	if err != nil {
		return "", err
	}
	s2, ok := corr.s1ToS2[s1Name]
	if !ok {
		return "", unknownPatch(s1Name, dataset.S1)
	}
	return s2, nil
}

// S2ToS1 returns the Sentinel-1 name of a Sentinel-2 patch.
func (c *Catalog) S2ToS1(s2Name string) (string, error) {
	corr, err := c.corr.get()
	if err != nil {
		return "", err
	}
	s1, ok := corr.s2ToS1[s2Name]
	if !ok {
		return "", unknownPatch(s2Name, dataset.S2)
	}
	return s1, nil
}

// Counterpart returns the name of the same physical patch as seen by the
// other sensor.
func (c *Catalog) Counterpart(name string) (string, error) {
	switch {
	case patch.IsS2(name):
		return c.S2ToS1(name)
	case patch.IsS1(name):
		return c.S1ToS2(name)
	default:
		return "", unmatchedName(name)
	}
}

// canonical returns the S2 name used to index the attribute tables.
func (c *Catalog) canonical(name string) (string, error) {
	switch {
	case patch.IsS2(name):
		return name, nil
	case patch.IsS1(name):
		return c.S1ToS2(name)
	default:
		return "", unmatchedName(name)
	}
}

// canonicalMember is canonical for set membership: names that are malformed
// or unknown are simply not members.
func (c *Catalog) canonicalMember(name string) (string, bool, error) {
	if patch.IsS2(name) {
		return name, true, nil
	}
	if !patch.IsS1(name) {
		return "", false, nil
	}
	corr, err := c.corr.get()
	if err != nil {
		return "", false, err
	}
	s2, ok := corr.s1ToS2[name]
	return s2, ok, nil
}

// CountryOf returns the country of an S1 or S2 patch.
func (c *Catalog) CountryOf(name string) (dataset.Country, error) {
	s2, err := c.canonical(name)
	if err != nil {
		return "", err
	}
	countries, err := c.country.get()
	if err != nil {
		return "", err
	}
	country, ok := countries[s2]
	if !ok {
		return "", unknownPatch(name, dataset.S2)
	}
	return country, nil
}

// SeasonOf returns the acquisition season of an S1 or S2 patch.
func (c *Catalog) SeasonOf(name string) (dataset.Season, error) {
	s2, err := c.canonical(name)
	if err != nil {
		return "", err
	}
	seasons, err := c.season.get()
	if err != nil {
		return "", err
	}
	season, ok := seasons[s2]
	if !ok {
		return "", unknownPatch(name, dataset.S2)
	}
	return season, nil
}

// OriginalSplitOf returns the split of the original train/validation/test
// partition. Patches outside every split, which is expected for snowy,
// cloudy and no-19-class-target patches, yield SplitUnknown. The first miss
// of a catalog is logged as a warning, later ones at debug level.
func (c *Catalog) OriginalSplitOf(name string) (dataset.Split, error) {
	s2, ok, err := c.canonicalMember(name)
	if err != nil {
		return dataset.SplitUnknown, err
	}
	splits, err := c.splits.get()
	if err != nil {
		return dataset.SplitUnknown, err
	}
	if ok {
		if split, found := splits[s2]; found {
			return split, nil
		}
	}
	if c.unsplit.Add(1) == 1 {
		c.logger().Warn("patch is not part of the original split, further misses are logged at debug level",
			logger.String("patch", name))
	} else {
		c.logger().Debug("patch is not part of the original split", logger.String("patch", name))
	}
	return dataset.SplitUnknown, nil
}

// IsSnowy reports whether the patch is covered by seasonal snow.
func (c *Catalog) IsSnowy(name string) (bool, error) {
	return c.member(&c.snowy, name)
}

// IsCloudyOrShadowy reports whether the patch is covered by clouds or cloud
// shadows.
func (c *Catalog) IsCloudyOrShadowy(name string) (bool, error) {
	return c.member(&c.cloudy, name)
}

// Has19ClassTarget reports whether at least one label of the patch survives
// the conversion to the 19-class nomenclature. Names that are not in the
// no-target table, including unknown ones, report true.
func (c *Catalog) Has19ClassTarget(name string) (bool, error) {
	in, err := c.member(&c.no19, name)
	return !in, err
}

func (c *Catalog) member(set *lazy[map[string]struct{}], name string) (bool, error) {
	s2, ok, err := c.canonicalMember(name)
	if err != nil || !ok {
		return false, err
	}
	names, err := set.get()
	if err != nil {
		return false, err
	}
	_, in := names[s2]
	return in, nil
}

// AllPatches returns the complete set of patch names of sensor.
func (c *Catalog) AllPatches(sensor dataset.Sensor) (map[string]struct{}, error) {
	return c.collect(sensor, func(string) bool { return true })
}

// RecommendedPatches returns the patches recommended for deep learning: all
// patches except snowy, cloudy or shadowy ones and those without a 19-class
// target.
func (c *Catalog) RecommendedPatches(sensor dataset.Sensor) (map[string]struct{}, error) {
	snowy, err := c.snowy.get()
	if err != nil {
		return nil, err
	}
	cloudy, err := c.cloudy.get()
	if err != nil {
		return nil, err
	}
	no19, err := c.no19.get()
	if err != nil {
		return nil, err
	}
	return c.collect(sensor, func(s2 string) bool {
		_, s := snowy[s2]
		_, cl := cloudy[s2]
		_, n := no19[s2]
		return !s && !cl && !n
	})
}

// SplitPatches returns the patches of sensor in the original split.
func (c *Catalog) SplitPatches(sensor dataset.Sensor, split dataset.Split) (map[string]struct{}, error) {
	if !split.Valid() {
		return nil, errors.Newf("invalid split %q", string(split)).
			Component("catalog").
			Category(errors.CategoryValidation).
			Context("split", string(split)).
			Build()
	}
	splits, err := c.splits.get()
	if err != nil {
		return nil, err
	}
	return c.collect(sensor, func(s2 string) bool { return splits[s2] == split })
}

// collect returns the names of sensor whose S2 counterpart satisfies keep.
func (c *Catalog) collect(sensor dataset.Sensor, keep func(s2 string) bool) (map[string]struct{}, error) {
	if err := validSensor(sensor); err != nil {
		return nil, err
	}
	corr, err := c.corr.get()
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(corr.s1ToS2))
	for s1, s2 := range corr.s1ToS2 {
		if !keep(s2) {
			continue
		}
		if sensor == dataset.S1 {
			out[s1] = struct{}{}
		} else {
			out[s2] = struct{}{}
		}
	}
	return out, nil
}

func validSensor(sensor dataset.Sensor) error {
	if sensor.Valid() {
		return nil
	}
	return errors.Newf("invalid sensor %q", string(sensor)).
		Component("catalog").
		Category(errors.CategoryValidation).
		Context("sensor", string(sensor)).
		Build()
}

// unmatchedName is the lookup failure for a name of neither grammar. Such a
// name cannot be a key of any table.
func unmatchedName(name string) error {
	return errors.Newf("%q matches neither the S1 nor the S2 patch name grammar", name).
		Component("catalog").
		Category(errors.CategoryNotFound).
		Context("patch", name).
		Build()
}

func invalidName(name string) error {
	return errors.Newf("%q is not a valid S1 or S2 patch name", name).
		Component("catalog").
		Category(errors.CategoryValidation).
		Context("patch", name).
		Build()
}

func unknownPatch(name string, sensor dataset.Sensor) error {
	return errors.Newf("unknown %s patch %s", sensor, name).
		Component("catalog").
		Category(errors.CategoryNotFound).
		Context("patch", name).
		Context("sensor", string(sensor)).
		Build()
}
