// Package constants provides shared constants used throughout treesync.
// This includes default thresholds, timeouts, file permissions and the
// tag keys that the cadastre import relies on.
package constants

import "time"

// Reconciliation defaults, calibrated for street trees
const (
	// DefaultSafeDistance is the minimum distance in meters a new cadastre tree must keep
	// from any mapped tree to be added without review (about "the other side of a residential street")
	DefaultSafeDistance = 6.5

	// DefaultMergeDistance is the maximum trunk-center to trunk-center distance in meters
	// at which a cadastre tree is merged into an unlinked mapped tree without review
	DefaultMergeDistance = 2.5

	// DefaultCellSize is the raster cell size in degrees (roughly 30x55m at 53.5°N)
	DefaultCellSize = 0.0005

	// DefaultWorkers is the number of goroutines used for the candidate search
	DefaultWorkers = 4
)

// Import area defaults. Hamburg, including the island of Neuwerk.
const (
	DefaultRegionMinLat = 53.3951118
	DefaultRegionMinLon = 8.1044993
	DefaultRegionMaxLat = 54.0276500
	DefaultRegionMaxLon = 10.3252805

	// DefaultAreaRelation is the OSM relation id of Hamburg
	DefaultAreaRelation = 62782

	// DefaultTimezone is used to turn check dates into instants
	DefaultTimezone = "Europe/Berlin"
)

// Tag keys
const (
	TagCheckDate     = "check_date"
	TagSurveyDate    = "survey:date"
	TagGenus         = "genus"
	TagSpecies       = "species"
	TagCultivar      = "taxon:cultivar"
	TagNatural       = "natural"
	TagOperator      = "operator"
	TagRefBUKEA      = "ref:bukea"
	TagRefHPA        = "ref:hpa"
	TagCircumference = "circumference"
	TagDiameterCrown = "diameter_crown"
)

// Timeout constants
const (
	// DefaultHTTPTimeout is the timeout for a single Overpass request; area queries are slow
	DefaultHTTPTimeout = 5 * time.Minute

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 2 * time.Second

	// MaxRetries is the maximum number of attempts for a retryable request
	MaxRetries = 3
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// External resources
const (
	// DefaultOverpassURL is the public Overpass API interpreter endpoint
	DefaultOverpassURL = "https://overpass-api.de/api/interpreter"

	// Generator is written into every produced OSM file
	Generator = "treesync"
)

// Output file suffixes, appended to the cadastre file name
const (
	ChangeFileSuffix  = "-aenderungen.osc"
	ReviewFileSuffix  = "-review.osm"
	GeoJSONFileSuffix = "-review.geojson"
)
