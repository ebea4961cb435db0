// Package dataset defines the closed domains of the BigEarthNet archive:
// sensors, countries, seasons, original splits and the documented sizes.
package dataset

import (
	"strings"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// Sensor identifies the satellite source of a patch.
type Sensor string

const (
	S1 Sensor = "S1"
	S2 Sensor = "S2"
)

// AllSensors returns both sensors, S1 first.
func AllSensors() []Sensor {
	return []Sensor{S1, S2}
}

// Valid reports whether s is S1 or S2.
func (s Sensor) Valid() bool {
	return s == S1 || s == S2
}

// ParseSensor accepts "s1", "S1", "sentinel-1" and the S2 counterparts.
func ParseSensor(s string) (Sensor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s1", "sentinel-1", "sentinel1":
		return S1, nil
	case "s2", "sentinel-2", "sentinel2":
		return S2, nil
	}
	return "", invalidValue("sensor", s)
}

// Country is one of the ten countries covered by BigEarthNet.
type Country string

const (
	Austria     Country = "Austria"
	Belgium     Country = "Belgium"
	Finland     Country = "Finland"
	Ireland     Country = "Ireland"
	Kosovo      Country = "Kosovo"
	Lithuania   Country = "Lithuania"
	Luxembourg  Country = "Luxembourg"
	Portugal    Country = "Portugal"
	Serbia      Country = "Serbia"
	Switzerland Country = "Switzerland"
)

var countries = []Country{
	Austria, Belgium, Finland, Ireland, Kosovo,
	Lithuania, Luxembourg, Portugal, Serbia, Switzerland,
}

// ISO A2 is used because Kosovo has no ISO A3 code.
var countryISOA2 = map[Country]string{
	Austria:     "AT",
	Belgium:     "BE",
	Finland:     "FI",
	Ireland:     "IE",
	Kosovo:      "XK",
	Lithuania:   "LT",
	Luxembourg:  "LU",
	Portugal:    "PT",
	Serbia:      "RS",
	Switzerland: "CH",
}

// AllCountries returns the countries in alphabetical order.
func AllCountries() []Country {
	return append([]Country(nil), countries...)
}

// ISOA2 returns the two letter country code.
func (c Country) ISOA2() string {
	return countryISOA2[c]
}

// Valid reports whether c belongs to the closed country domain.
func (c Country) Valid() bool {
	_, ok := countryISOA2[c]
	return ok
}

// ParseCountry matches a country name case-insensitively.
func ParseCountry(s string) (Country, error) {
	for _, c := range countries {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", invalidValue("country", s)
}

// CountryFromISOA2 maps a two letter code back to the country.
func CountryFromISOA2(code string) (Country, bool) {
	for c, iso := range countryISOA2 {
		if strings.EqualFold(iso, code) {
			return c, true
		}
	}
	return "", false
}

// Season is the meteorological season of the acquisition (northern hemisphere).
type Season string

const (
	Winter Season = "Winter"
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
)

var seasons = []Season{Winter, Spring, Summer, Fall}

// AllSeasons returns the seasons starting with Winter.
func AllSeasons() []Season {
	return append([]Season(nil), seasons...)
}

// Valid reports whether s belongs to the closed season domain.
func (s Season) Valid() bool {
	for _, v := range seasons {
		if v == s {
			return true
		}
	}
	return false
}

// ParseSeason matches a season name case-insensitively. "Autumn" is accepted
// for Fall.
func ParseSeason(s string) (Season, error) {
	in := strings.TrimSpace(s)
	if strings.EqualFold(in, "autumn") {
		return Fall, nil
	}
	for _, v := range seasons {
		if strings.EqualFold(string(v), in) {
			return v, nil
		}
	}
	return "", invalidValue("season", s)
}

// SeasonFromMonth maps a month (1-12) to its meteorological season:
// December-February is Winter, March-May Spring and so on.
func SeasonFromMonth(month int) (Season, error) {
	if month < 1 || month > 12 {
		return "", errors.Newf("month %d out of range 1..12", month).
			Component("dataset").
			Category(errors.CategoryValidation).
			Context("month", month).
			Build()
	}
	return seasons[month%12/3], nil
}

// Split is the original train/validation/test assignment of a patch.
type Split string

const (
	Train      Split = "train"
	Validation Split = "validation"
	Test       Split = "test"

	// SplitUnknown marks patches that belong to no original split.
	SplitUnknown Split = ""
)

// AllSplits returns train, validation and test.
func AllSplits() []Split {
	return []Split{Train, Validation, Test}
}

// Valid reports whether s is one of the three original splits.
func (s Split) Valid() bool {
	return s == Train || s == Validation || s == Test
}

// String renders SplitUnknown as "unknown".
func (s Split) String() string {
	if s == SplitUnknown {
		return "unknown"
	}
	return string(s)
}

// ParseSplit accepts "train", "validation" (or "val") and "test".
func ParseSplit(s string) (Split, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "train":
		return Train, nil
	case "validation", "val":
		return Validation, nil
	case "test":
		return Test, nil
	}
	return "", invalidValue("split", s)
}

func invalidValue(kind, value string) error {
	return errors.Newf("invalid %s %q", kind, value).
		Component("dataset").
		Category(errors.CategoryValidation).
		Context(kind, value).
		Build()
}
