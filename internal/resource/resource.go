// Package resource loads the bzip2 compressed lookup tables that describe the
// BigEarthNet archive and downloads them into the local data directory.
package resource

import "strings"

// Resource names a compressed CSV lookup table by its file name.
type Resource string

const (
	// CloudAndShadow lists S2 patches covered by clouds or cloud shadows
	// (headerless, single column).
	CloudAndShadow Resource = "patches_with_cloud_and_shadow.csv.bz2"
	// SeasonalSnow lists S2 patches covered by seasonal snow.
	SeasonalSnow Resource = "patches_with_seasonal_snow.csv.bz2"
	// No19ClassTargets lists S2 patches whose labels are all removed in the
	// 19-class nomenclature.
	No19ClassTargets Resource = "patches_with_no_19_class_targets.csv.bz2"
	// NameCountrySeason maps every S1 name to its S2 name, country and season
	// (header: s1_name,s2_name,country,season).
	NameCountrySeason Resource = "s1_s2_name_country_season.csv.bz2"
	// TrainSplit, ValidationSplit and TestSplit list the S2 patches of the
	// original splits.
	TrainSplit      Resource = "train.csv.bz2"
	ValidationSplit Resource = "val.csv.bz2"
	TestSplit       Resource = "test.csv.bz2"
)

// Column names of NameCountrySeason.
const (
	ColumnS1Name  = "s1_name"
	ColumnS2Name  = "s2_name"
	ColumnCountry = "country"
	ColumnSeason  = "season"
)

// All returns every known resource.
func All() []Resource {
	return []Resource{
		CloudAndShadow, SeasonalSnow, No19ClassTargets,
		NameCountrySeason, TrainSplit, ValidationSplit, TestSplit,
	}
}

func (r Resource) String() string { return string(r) }

// Plain is the file name of the uncompressed table. The loader reads it when
// the compressed file is absent.
func (r Resource) Plain() string { return strings.TrimSuffix(string(r), ".bz2") }

// Upstream locations of the tables the archive authors publish themselves.
// They serve uncompressed CSV and are used when no mirror is configured.
const (
	SeasonalSnowSourceURL   = "http://bigearth.net/static/documents/patches_with_seasonal_snow.csv"
	CloudAndShadowSourceURL = "http://bigearth.net/static/documents/get_patches_with_cloud_and_shadow.csv"
)

// SourceURLs returns the upstream location of every table that has one.
func SourceURLs() map[Resource]string {
	return map[Resource]string{
		SeasonalSnow:   SeasonalSnowSourceURL,
		CloudAndShadow: CloudAndShadowSourceURL,
	}
}
