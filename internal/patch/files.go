package patch

import (
	"fmt"

	"github.com/bigearthnet-go/bencommon/internal/dataset"
)

// MetadataSuffix is appended to the patch name to form the JSON file name.
const MetadataSuffix = "_labels_metadata.json"

var s1FileSuffixes = []string{"_VV.tif", "_VH.tif", MetadataSuffix}

var s2FileSuffixes = func() []string {
	suffixes := make([]string, 0, 13)
	for i := 1; i <= 12; i++ {
		if i == 10 {
			continue
		}
		suffixes = append(suffixes, fmt.Sprintf("_B%02d.tif", i))
	}
	return append(suffixes, "_B8A.tif", MetadataSuffix)
}()

// FileSuffixes returns the suffixes of every file a complete patch directory
// of the given sensor contains.
func FileSuffixes(sensor dataset.Sensor) []string {
	if sensor == dataset.S1 {
		return append([]string(nil), s1FileSuffixes...)
	}
	return append([]string(nil), s2FileSuffixes...)
}

// MetadataFile returns the JSON metadata file name of a patch.
func MetadataFile(name string) string {
	return name + MetadataSuffix
}
