package metadata

import (
	"strings"
	"time"

	"github.com/bigearthnet-go/bencommon/internal/errors"
)

// AcquisitionLayout is the layout of acquisition dates in built records.
const AcquisitionLayout = "2006-01-02 15:04:05"

// datetimeLayouts are tried in order. Fractional seconds are accepted after
// the seconds field by every layout.
var datetimeLayouts = []string{
	AcquisitionLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"02.01.2006 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseDatetime parses the timestamp formats found in BigEarthNet metadata,
// e.g. "2017-06-13 10:10:31" (S2) or "2017-06-13T16:50:43.000" (S1).
// Timestamps without a zone are UTC.
func ParseDatetime(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unknown datetime format %q", s).
		Component("metadata").
		Category(errors.CategoryValidation).
		Context("value", s).
		Build()
}

// Acquired returns the parsed acquisition time.
func (m *S1) Acquired() (time.Time, error) { return ParseDatetime(m.AcquisitionTime) }

// Acquired returns the parsed acquisition date.
func (m *S2) Acquired() (time.Time, error) { return ParseDatetime(m.AcquisitionDate) }
