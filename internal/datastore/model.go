// model.go defines the tables written by the metadata builder
package datastore

import (
	"strings"
	"time"
)

// LabelSeparator joins label lists in a single column. CORINE label names
// contain commas but never semicolons.
const LabelSeparator = ";"

// PatchRecord is one patch of a builder run with its full metadata.
type PatchRecord struct {
	ID     uint   `gorm:"primaryKey" csv:"-"`
	RunID  string `gorm:"size:36;uniqueIndex:idx_patch_run_name;not null" csv:"run_id"`
	Name   string `gorm:"size:64;uniqueIndex:idx_patch_run_name;index:idx_patch_name;not null" csv:"name"`
	Sensor string `gorm:"size:2" csv:"sensor"`
	// Counterpart is the corresponding patch of the other sensor, empty when
	// the patch is not part of the archive.
	Counterpart     string `gorm:"size:64" csv:"counterpart"`
	AcquisitionDate string `gorm:"size:19;index:idx_patch_acquisition" csv:"acquisition_date"`
	Labels          string `gorm:"type:text" csv:"labels"`
	NewLabels       string `gorm:"type:text" csv:"new_labels"`
	HasNewLabels    bool   `csv:"has_new_labels"`
	// SourceCRS is the projection of the patch as given in its metadata file.
	SourceCRS string `gorm:"type:text" csv:"-"`
	// Footprint is the patch outline as WKT in CRS.
	Footprint       string  `gorm:"type:text" csv:"footprint"`
	CRS             string  `gorm:"size:32" csv:"crs"`
	CentroidX       float64 `csv:"centroid_x"`
	CentroidY       float64 `csv:"centroid_y"`
	CountryDistance float64 `csv:"country_distance"`
	Country         string  `gorm:"size:16;index:idx_patch_country" csv:"country"`
	Season          string  `gorm:"size:8;index:idx_patch_season" csv:"season"`
	Snow            bool    `csv:"snow"`
	CloudOrShadow   bool    `csv:"cloud_or_shadow"`
	OriginalSplit   string  `gorm:"size:16;index:idx_patch_split" csv:"original_split"`

	CreatedAt time.Time `csv:"-"`
}

// LabelList splits Labels.
func (r *PatchRecord) LabelList() []string {
	return splitLabels(r.Labels)
}

// NewLabelList splits NewLabels.
func (r *PatchRecord) NewLabelList() []string {
	return splitLabels(r.NewLabels)
}

// JoinLabels is the inverse of LabelList.
func JoinLabels(labels []string) string {
	return strings.Join(labels, LabelSeparator)
}

func splitLabels(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, LabelSeparator)
}

// BuildRun records one execution of the builder.
type BuildRun struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Root       string    `gorm:"type:text"`
	Sensor     string    `gorm:"size:2"`
	TargetCRS  string    `gorm:"size:32"`
	LocalCRS   string    `gorm:"size:32"`
	Discovered int
	Saved      int
	RemovedBad bool
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
}
