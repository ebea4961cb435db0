// Package testutil provides a miniature BigEarthNet resource set and
// helpers shared by the bencommon tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
)

// FixturePatch describes one patch of the miniature archive stored under
// testdata/resources.
type FixturePatch struct {
	S1      string
	S2      string
	Country dataset.Country
	Season  dataset.Season
	Split   dataset.Split
	Snowy   bool
	Cloudy  bool
	No19    bool
}

// Recommended reports whether the patch survives the recommended filter.
func (p FixturePatch) Recommended() bool {
	return !p.Snowy && !p.Cloudy && !p.No19
}

// FixturePatches is the content of the fixture resources. Keep in sync with
// testdata/resources/*.bz2.
var FixturePatches = []FixturePatch{
	{"S1A_IW_GRDH_1SDV_20170613T165043_33UUP_0_45", "S2A_MSIL2A_20170613T101031_0_45", dataset.Austria, dataset.Summer, dataset.Train, false, false, false},
	{"S1A_IW_GRDH_1SDV_20170613T165043_33UUP_0_46", "S2A_MSIL2A_20170613T101031_0_46", dataset.Austria, dataset.Summer, dataset.Validation, false, false, false},
	{"S1B_IW_GRDH_1SDV_20180204T53007_29SND_10_2", "S2B_MSIL2A_20180204T94151_10_2", dataset.Portugal, dataset.Winter, dataset.Test, false, false, false},
	{"S1A_IW_GRDH_1SDV_20171208T162020_34VFN_2_10", "S2A_MSIL2A_20171208T93041_2_10", dataset.Finland, dataset.Winter, dataset.SplitUnknown, true, false, false},
	{"S1B_IW_GRDH_1SDV_20171002T063548_29UPU_9_77", "S2B_MSIL2A_20171002T112112_9_77", dataset.Ireland, dataset.Fall, dataset.SplitUnknown, false, true, false},
	{"S1A_IW_GRDH_1SDV_20180413T044210_34TDN_1_20", "S2A_MSIL2A_20180413T95032_1_20", dataset.Serbia, dataset.Spring, dataset.SplitUnknown, false, false, true},
	{"S1A_IW_GRDH_1SDV_20170717T055710_29TNE_12_3", "S2A_MSIL2A_20170717T113321_12_3", dataset.Portugal, dataset.Summer, dataset.Train, false, false, false},
	{"S1B_IW_GRDH_1SDV_20170924T160612_33TXN_5_8", "S2B_MSIL2A_20170924T93020_5_8", dataset.Austria, dataset.Fall, dataset.Train, false, false, false},
}

// Names returns the S1 or S2 names of FixturePatches in fixture order.
func Names(sensor dataset.Sensor) []string {
	out := make([]string, len(FixturePatches))
	for i, p := range FixturePatches {
		if sensor == dataset.S1 {
			out[i] = p.S1
		} else {
			out[i] = p.S2
		}
	}
	return out
}

// ResourceDir returns the absolute path of the fixture resource directory.
func ResourceDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "resources")
}

// ResourceFS returns the fixture resources as a file system.
func ResourceFS() fs.FS {
	return os.DirFS(ResourceDir())
}
