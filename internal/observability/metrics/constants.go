// Package metrics provides constants used across metric definitions.
package metrics

// Operation names recorded through the Recorder interface.
const (
	// OpLoadDict represents loading a key/value table from a resource.
	OpLoadDict = "load_dict"
	// OpLoadColumn represents loading one column of a resource as a set.
	OpLoadColumn = "load_column"
	// OpLoadSet represents loading a headerless single column resource.
	OpLoadSet = "load_set"
	// OpFetch represents downloading a resource file.
	OpFetch = "fetch"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusCached  = "cached"
	StatusSkipped = "skipped"
)

// Builder stage label values.
const (
	StageDiscover = "discover"
	StageParse    = "parse"
	StageProject  = "project"
	StageCountry  = "country"
	StageEnrich   = "enrich"
	StagePersist  = "persist"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketStart100ms is the starting bucket for 100ms histograms (100ms to ~100s range).
	BucketStart100ms = 0.1
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount10 defines 10 exponential buckets.
	BucketCount10 = 10
	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
)
