// Package bands lists the spectral channels of BigEarthNet and their
// normalisation statistics.
package bands

import "slices"

// S2 channel names in canonical order.
var (
	Channels       = []string{"B01", "B02", "B03", "B04", "B05", "B06", "B07", "B08", "B8A", "B09", "B11", "B12"}
	Channels10m    = []string{"B02", "B03", "B04", "B08"}
	Channels20m    = []string{"B05", "B06", "B07", "B8A", "B11", "B12"}
	Channels60m    = []string{"B01", "B09"}
	RGBChannels    = []string{"B04", "B03", "B02"}
	S1Channels     = []string{"VV", "VH"}
	Channels10m20m = naturalOrder(append(slices.Clone(Channels10m), Channels20m...))
)

// Stats holds the per band mean and standard deviation of the uint16 data.
type Stats struct {
	Mean float64
	Std  float64
}

var bandStats = map[string]Stats{
	"B01": {340.76769064, 554.81258967},
	"B02": {429.9430203, 572.41639287},
	"B03": {614.21682446, 582.87945694},
	"B04": {590.23569706, 675.88746967},
	"B05": {950.68368468, 729.89827633},
	"B06": {1792.46290469, 1096.01480586},
	"B07": {2075.46795189, 1273.45393088},
	"B08": {2218.94553375, 1365.45589904},
	"B8A": {2266.46036911, 1356.13789355},
	"B09": {2246.0605464, 1302.3292881},
	"B11": {1594.42694882, 1079.19066363},
	"B12": {1009.32729131, 818.86747235},
}

// StatsOf returns the statistics of an S2 band.
func StatsOf(band string) (Stats, bool) {
	s, ok := bandStats[band]
	return s, ok
}

// Float32StatsOf returns the statistics rescaled to [0, 1] assuming the
// source values are uint16.
func Float32StatsOf(band string) (Stats, bool) {
	s, ok := bandStats[band]
	if !ok {
		return Stats{}, false
	}
	maxVal := MaxValueByDtype["uint16"]
	return Stats{Mean: s.Mean / maxVal, Std: s.Std / maxVal}, true
}

// MaxValueByDtype is the maximum representable value per data type name.
var MaxValueByDtype = map[string]float64{
	"uint8":   255,
	"uint16":  65535,
	"uint32":  4294967295,
	"float32": 1.0,
	"float64": 1.0,
}

// naturalOrder sorts band names so that B8A follows B08.
func naturalOrder(names []string) []string {
	rank := make(map[string]int, len(Channels))
	for i, b := range Channels {
		rank[b] = i
	}
	slices.SortFunc(names, func(a, b string) int { return rank[a] - rank[b] })
	return names
}
