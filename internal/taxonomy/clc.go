package taxonomy

import "slices"

// CLC level counts.
const (
	CLCLevel3Count = 44
	CLCLevel2Count = 15
	CLCLevel1Count = 5
)

type clcEntry struct {
	code   int
	label  string
	level2 string
}

// clcLevel3 lists the CORINE level-3 classes in code order. Level-2 names
// keep the spelling of the published nomenclature ("comercial").
var clcLevel3 = []clcEntry{
	{111, "Continuous urban fabric", "Urban fabric"},
	{112, "Discontinuous urban fabric", "Urban fabric"},
	{121, "Industrial or commercial units", "Industrial, comercial and transport units"},
	{122, "Road and rail networks and associated land", "Industrial, comercial and transport units"},
	{123, "Port areas", "Industrial, comercial and transport units"},
	{124, "Airports", "Industrial, comercial and transport units"},
	{131, "Mineral extraction sites", "Mine, dump and construction sites"},
	{132, "Dump sites", "Mine, dump and construction sites"},
	{133, "Construction sites", "Mine, dump and construction sites"},
	{141, "Green urban areas", "Artificial, non-agricultural vegetated areas"},
	{142, "Sport and leisure facilities", "Artificial, non-agricultural vegetated areas"},
	{211, "Non-irrigated arable land", "Arable land"},
	{212, "Permanently irrigated land", "Arable land"},
	{213, "Rice fields", "Arable land"},
	{221, "Vineyards", "Permanent crops"},
	{222, "Fruit trees and berry plantations", "Permanent crops"},
	{223, "Olive groves", "Permanent crops"},
	{231, "Pastures", "Pastures"},
	{241, "Annual crops associated with permanent crops", "Heterogeneous agricultural areas"},
	{242, "Complex cultivation patterns", "Heterogeneous agricultural areas"},
	{243, "Land principally occupied by agriculture, with significant areas of natural vegetation", "Heterogeneous agricultural areas"},
	{244, "Agro-forestry areas", "Heterogeneous agricultural areas"},
	{311, "Broad-leaved forest", "Forest"},
	{312, "Coniferous forest", "Forest"},
	{313, "Mixed forest", "Forest"},
	{321, "Natural grassland", "Shrub and/or herbaceous vegetation associations"},
	{322, "Moors and heathland", "Shrub and/or herbaceous vegetation associations"},
	{323, "Sclerophyllous vegetation", "Shrub and/or herbaceous vegetation associations"},
	{324, "Transitional woodland/shrub", "Shrub and/or herbaceous vegetation associations"},
	{331, "Beaches, dunes, sands", "Open spaces with little or no vegetation"},
	{332, "Bare rock", "Open spaces with little or no vegetation"},
	{333, "Sparsely vegetated areas", "Open spaces with little or no vegetation"},
	{334, "Burnt areas", "Open spaces with little or no vegetation"},
	{335, "Glaciers and perpetual snow", "Open spaces with little or no vegetation"},
	{411, "Inland marshes", "Inland wetlands"},
	{412, "Peatbogs", "Inland wetlands"},
	{421, "Salt marshes", "Coastal wetlands"},
	{422, "Salines", "Coastal wetlands"},
	{423, "Intertidal flats", "Coastal wetlands"},
	{511, "Water courses", "Inland waters"},
	{512, "Water bodies", "Inland waters"},
	{521, "Coastal lagoons", "Marine waters"},
	{522, "Estuaries", "Marine waters"},
	{523, "Sea and ocean", "Marine waters"},
}

type clcParent struct {
	label  string
	level1 string
}

var clcLevel2 = []clcParent{
	{"Urban fabric", "Artificial Surfaces"},
	{"Industrial, comercial and transport units", "Artificial Surfaces"},
	{"Mine, dump and construction sites", "Artificial Surfaces"},
	{"Artificial, non-agricultural vegetated areas", "Artificial Surfaces"},
	{"Arable land", "Agricultural areas"},
	{"Permanent crops", "Agricultural areas"},
	{"Pastures", "Agricultural areas"},
	{"Heterogeneous agricultural areas", "Agricultural areas"},
	{"Forest", "Forest and seminatural areas"},
	{"Shrub and/or herbaceous vegetation associations", "Forest and seminatural areas"},
	{"Open spaces with little or no vegetation", "Forest and seminatural areas"},
	{"Inland wetlands", "Wetlands"},
	{"Coastal wetlands", "Wetlands"},
	{"Inland waters", "Water bodies"},
	{"Marine waters", "Water bodies"},
}

// CLCLevel3Labels returns the level-3 labels in code order.
func CLCLevel3Labels() []string {
	out := make([]string, len(clcLevel3))
	for i, e := range clcLevel3 {
		out[i] = e.label
	}
	return out
}

// CLCLevel2Labels returns the level-2 labels in code order.
func CLCLevel2Labels() []string {
	out := make([]string, len(clcLevel2))
	for i, e := range clcLevel2 {
		out[i] = e.label
	}
	return out
}

// CLCLevel1Labels returns the five level-1 labels in code order.
func CLCLevel1Labels() []string {
	var out []string
	for _, e := range clcLevel2 {
		if !slices.Contains(out, e.level1) {
			out = append(out, e.level1)
		}
	}
	return out
}

// CLCLevel3ToLevel2 maps every level-3 label to its level-2 parent.
func CLCLevel3ToLevel2() map[string]string {
	out := make(map[string]string, len(clcLevel3))
	for _, e := range clcLevel3 {
		out[e.label] = e.level2
	}
	return out
}

// CLCLevel2ToLevel1 maps every level-2 label to its level-1 parent.
func CLCLevel2ToLevel1() map[string]string {
	out := make(map[string]string, len(clcLevel2))
	for _, e := range clcLevel2 {
		out[e.label] = e.level1
	}
	return out
}

// CLCLevel3ToLevel1 composes the two parent mappings.
func CLCLevel3ToLevel1() map[string]string {
	lv2 := CLCLevel2ToLevel1()
	out := make(map[string]string, len(clcLevel3))
	for _, e := range clcLevel3 {
		out[e.label] = lv2[e.level2]
	}
	return out
}

// CLCCode returns the numeric CORINE code of a level-3 label.
func CLCCode(label string) (int, bool) {
	for _, e := range clcLevel3 {
		if e.label == label {
			return e.code, true
		}
	}
	return 0, false
}
