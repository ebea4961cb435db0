// Package taxonomy holds the BigEarthNet label nomenclatures and the CORINE
// Land Cover hierarchy they derive from.
package taxonomy

import (
	"slices"
	"sort"
)

// removed marks an old label without a 19-class counterpart.
const removed = ""

// old2new maps each of the 43 original labels to its 19-class label.
var old2new = map[string]string{
	"Continuous urban fabric":                      "Urban fabric",
	"Discontinuous urban fabric":                   "Urban fabric",
	"Industrial or commercial units":               "Industrial or commercial units",
	"Non-irrigated arable land":                    "Arable land",
	"Permanently irrigated land":                   "Arable land",
	"Rice fields":                                  "Arable land",
	"Vineyards":                                    "Permanent crops",
	"Fruit trees and berry plantations":            "Permanent crops",
	"Olive groves":                                 "Permanent crops",
	"Annual crops associated with permanent crops": "Permanent crops",
	"Pastures":                                     "Pastures",
	"Complex cultivation patterns":                 "Complex cultivation patterns",
	"Land principally occupied by agriculture, with significant areas of natural vegetation": "Land principally occupied by agriculture, with significant areas of natural vegetation",
	"Agro-forestry areas":         "Agro-forestry areas",
	"Broad-leaved forest":         "Broad-leaved forest",
	"Coniferous forest":           "Coniferous forest",
	"Mixed forest":                "Mixed forest",
	"Natural grassland":           "Natural grassland and sparsely vegetated areas",
	"Sparsely vegetated areas":    "Natural grassland and sparsely vegetated areas",
	"Moors and heathland":         "Moors, heathland and sclerophyllous vegetation",
	"Sclerophyllous vegetation":   "Moors, heathland and sclerophyllous vegetation",
	"Transitional woodland/shrub": "Transitional woodland, shrub",
	"Beaches, dunes, sands":       "Beaches, dunes, sands",
	"Inland marshes":              "Inland wetlands",
	"Peatbogs":                    "Inland wetlands",
	"Salt marshes":                "Coastal wetlands",
	"Salines":                     "Coastal wetlands",
	"Water courses":               "Inland waters",
	"Water bodies":                "Inland waters",
	"Coastal lagoons":             "Marine waters",
	"Estuaries":                   "Marine waters",
	"Sea and ocean":               "Marine waters",
	"Airports":                    removed,
	"Bare rock":                   removed,
	"Dump sites":                  removed,
	"Port areas":                  removed,
	"Road and rail networks and associated land": removed,
	"Mineral extraction sites":                   removed,
	"Construction sites":                         removed,
	"Sport and leisure facilities":               removed,
	"Burnt areas":                                removed,
	"Intertidal flats":                           removed,
	"Green urban areas":                          removed,
}

// oldOriginalOrder is the label order of the BigEarthNet paper, which follows
// the CLC level-3 codes.
var oldOriginalOrder = []string{
	"Continuous urban fabric",
	"Discontinuous urban fabric",
	"Industrial or commercial units",
	"Road and rail networks and associated land",
	"Port areas",
	"Airports",
	"Mineral extraction sites",
	"Dump sites",
	"Construction sites",
	"Green urban areas",
	"Sport and leisure facilities",
	"Non-irrigated arable land",
	"Permanently irrigated land",
	"Rice fields",
	"Vineyards",
	"Fruit trees and berry plantations",
	"Olive groves",
	"Pastures",
	"Annual crops associated with permanent crops",
	"Complex cultivation patterns",
	"Land principally occupied by agriculture, with significant areas of natural vegetation",
	"Agro-forestry areas",
	"Broad-leaved forest",
	"Coniferous forest",
	"Mixed forest",
	"Natural grassland",
	"Moors and heathland",
	"Sclerophyllous vegetation",
	"Transitional woodland/shrub",
	"Beaches, dunes, sands",
	"Bare rock",
	"Sparsely vegetated areas",
	"Burnt areas",
	"Inland marshes",
	"Peatbogs",
	"Salt marshes",
	"Salines",
	"Intertidal flats",
	"Water courses",
	"Water bodies",
	"Coastal lagoons",
	"Estuaries",
	"Sea and ocean",
}

var newOriginalOrder = []string{
	"Urban fabric",
	"Industrial or commercial units",
	"Arable land",
	"Permanent crops",
	"Pastures",
	"Complex cultivation patterns",
	"Land principally occupied by agriculture, with significant areas of natural vegetation",
	"Agro-forestry areas",
	"Broad-leaved forest",
	"Coniferous forest",
	"Mixed forest",
	"Natural grassland and sparsely vegetated areas",
	"Moors, heathland and sclerophyllous vegetation",
	"Transitional woodland, shrub",
	"Beaches, dunes, sands",
	"Inland wetlands",
	"Coastal wetlands",
	"Inland waters",
	"Marine waters",
}

var (
	oldLexOrder = sortedCopy(oldOriginalOrder)
	newLexOrder = sortedCopy(newOriginalOrder)
)

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return out
}

// OldLabels returns the 43 original labels, lexicographically sorted when
// lexSorted is set and in the original paper order otherwise.
func OldLabels(lexSorted bool) []string {
	if lexSorted {
		return slices.Clone(oldLexOrder)
	}
	return slices.Clone(oldOriginalOrder)
}

// NewLabels returns the 19 labels of the revised nomenclature.
func NewLabels(lexSorted bool) []string {
	if lexSorted {
		return slices.Clone(newLexOrder)
	}
	return slices.Clone(newOriginalOrder)
}

// IsOldLabel reports whether label is one of the 43 original labels.
func IsOldLabel(label string) bool {
	_, ok := old2new[label]
	return ok
}

// IsNewLabel reports whether label is one of the 19 labels.
func IsNewLabel(label string) bool {
	return slices.Contains(newOriginalOrder, label)
}

// RemovedLabels returns the original labels without a 19-class counterpart,
// sorted.
func RemovedLabels() []string {
	var out []string
	for old, n := range old2new {
		if n == removed {
			out = append(out, old)
		}
	}
	sort.Strings(out)
	return out
}

// OldToNewLabel converts a single original label. ok is false for removed
// labels; unknown labels return an error.
func OldToNewLabel(label string) (newLabel string, ok bool, err error) {
	n, known := old2new[label]
	if !known {
		return "", false, unknownLabel(label, Old43)
	}
	return n, n != removed, nil
}
