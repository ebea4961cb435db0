// Package patch parses BigEarthNet patch names.
//
// Sentinel-2 names look like S2A_MSIL2A_20170617T113321_4_55 and
// Sentinel-1 names like S1A_IW_GRDH_1SDV_20170613T165043_33UUP_70_48.
// Both grammars accept a one or two digit hour: some S2 patches were
// published without the leading zero.
package patch

import (
	"regexp"
	"strconv"
	"time"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
	"github.com/bigearthnet-go/bencommon/internal/errors"
)

const (
	s2Pattern = `(?P<mission>S2[AB])_(?P<product>MSIL2A)_` +
		`(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})T(?P<hour>\d{1,2})(?P<minute>\d{2})(?P<second>\d{2})_` +
		`(?P<row>\d{1,2})_(?P<col>\d{1,2})`

	s1Pattern = `(?P<mission>S1[AB])_IW_GRDH_1SDV_` +
		`(?P<year>\d{4})(?P<month>\d{2})(?P<day>\d{2})T(?P<hour>\d{1,2})(?P<minute>\d{2})(?P<second>\d{2})_` +
		`(?P<tile>\w{5})_(?P<row>\d{1,2})_(?P<col>\d{1,2})`
)

var (
	// S2Regexp matches a complete Sentinel-2 patch name.
	S2Regexp = regexp.MustCompile(`^` + s2Pattern + `$`)
	// S1Regexp matches a complete Sentinel-1 patch name.
	S1Regexp = regexp.MustCompile(`^` + s1Pattern + `$`)

	// S1BandRegexp extracts the polarisation from an S1 band file name.
	S1BandRegexp = regexp.MustCompile(`.*_(?P<band>V[HV])`)
	// S2BandRegexp extracts the band from an S2 band file name.
	S2BandRegexp = regexp.MustCompile(`.*(?P<band>B\d[0-9A])`)

	// RoughRegexp is the relaxed pattern used when scanning archive
	// directories for the builder.
	RoughRegexp = regexp.MustCompile(`S\d\w_[^_]+_\d+T\d+_\d+_\d+`)
)

// IsS2 reports whether name is a complete Sentinel-2 patch name.
func IsS2(name string) bool {
	return S2Regexp.MatchString(name)
}

// IsS1 reports whether name is a complete Sentinel-1 patch name.
func IsS1(name string) bool {
	return S1Regexp.MatchString(name)
}

// SensorOf returns the sensor whose grammar matches name.
func SensorOf(name string) (dataset.Sensor, bool) {
	switch {
	case IsS2(name):
		return dataset.S2, true
	case IsS1(name):
		return dataset.S1, true
	}
	return "", false
}

// ID is a validated patch name tagged with its sensor.
type ID struct {
	Sensor dataset.Sensor
	Raw    string
}

func (id ID) String() string { return id.Raw }

// Parse validates name against both grammars.
func Parse(name string) (ID, error) {
	sensor, ok := SensorOf(name)
	if !ok {
		return ID{}, errors.Newf("%q is not a valid S1 or S2 patch name", name).
			Component("patch").
			Category(errors.CategoryValidation).
			Context("patch", name).
			Build()
	}
	return ID{Sensor: sensor, Raw: name}, nil
}

// Fields holds the components encoded in a patch name.
type Fields struct {
	Mission     string
	Acquisition time.Time
	Tile        string // S1 only: the S2 L1C tile the patch lies in
	Row         int
	Col         int
}

// Fields decodes the mission, acquisition time and grid position.
func (id ID) Fields() (Fields, error) {
	re := S2Regexp
	if id.Sensor == dataset.S1 {
		re = S1Regexp
	}
	m := re.FindStringSubmatch(id.Raw)
	if m == nil {
		return Fields{}, errors.Newf("%q does not match the %s grammar", id.Raw, id.Sensor).
			Component("patch").
			Category(errors.CategoryValidation).
			Build()
	}

	group := func(name string) string { return m[re.SubexpIndex(name)] }
	num := func(name string) int {
		v, _ := strconv.Atoi(group(name))
		return v
	}

	f := Fields{
		Mission: group("mission"),
		Row:     num("row"),
		Col:     num("col"),
	}
	if id.Sensor == dataset.S1 {
		f.Tile = group("tile")
	}

	month := num("month")
	day := num("day")
	hour, minute, second := num("hour"), num("minute"), num("second")
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return Fields{}, errors.Newf("%q encodes an invalid timestamp", id.Raw).
			Component("patch").
			Category(errors.CategoryValidation).
			Build()
	}
	f.Acquisition = time.Date(num("year"), time.Month(month), day, hour, minute, second, 0, time.UTC)
	return f, nil
}

// BandOf extracts the band name from a band file name of the given sensor,
// e.g. "B8A" or "VH".
func BandOf(sensor dataset.Sensor, fileName string) (string, bool) {
	re := S2BandRegexp
	if sensor == dataset.S1 {
		re = S1BandRegexp
	}
	m := re.FindStringSubmatch(fileName)
	if m == nil {
		return "", false
	}
	return m[re.SubexpIndex("band")], true
}
