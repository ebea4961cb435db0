package dataset

// Documented sizes of the BigEarthNet v1.0 archive. They satisfy
//
//	RecommendedSize = CompleteSize - SnowyPatchesCount - CloudyOrShadowyCount
//		- No19ClassTargetCount + ExclusionOverlapCorrection
const (
	CompleteSize               = 590_326
	SnowyPatchesCount          = 61_707
	CloudyOrShadowyCount       = 9_280
	No19ClassTargetCount       = 57 // counted before snowy/cloudy patches are removed
	RecommendedSize            = 519_284
	ExclusionOverlapCorrection = 2 // patches counted in more than one exclusion set
)

// PatchSizeMeters is the edge length of a patch on the ground.
const PatchSizeMeters = 1200

// ArchiveURL is the download location of the S2 archive.
const ArchiveURL = "http://bigearth.net/downloads/BigEarthNet-v1.0.tar.gz"
