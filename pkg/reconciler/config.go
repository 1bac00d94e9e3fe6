package reconciler

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/osmhh/treesync/pkg/constants"
	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
)

// Config holds the run-level thresholds of a reconciliation. It is passed by
// value so runs with different settings never share state.
type Config struct {
	// SafeDistance in meters: a target this close to a new record always
	// triggers at least a review.
	SafeDistance float64 `json:"safe_distance" yaml:"safe_distance"`

	// MergeDistance in meters: records this close are presumed to be the
	// same tree. Must be less than SafeDistance.
	MergeDistance float64 `json:"merge_distance" yaml:"merge_distance"`

	// CellSize of the spatial raster in degrees.
	CellSize float64 `json:"cell_size" yaml:"cell_size"`

	// Region covered by the raster.
	Region geo.BoundingBox `json:"region" yaml:"region"`

	// NonConflictingFields are ignored when comparing a linked target with
	// its record, e.g. measurements that surveyors update independently.
	NonConflictingFields []string `json:"non_conflicting_fields" yaml:"non_conflicting_fields"`

	// IDTags name the tags carrying the stable id, in order of precedence.
	IDTags []string `json:"id_tags" yaml:"id_tags"`

	// Location used to interpret check dates. Nil means UTC.
	Location *time.Location `json:"-" yaml:"-"`
}

// cadastreLocation is the zone check dates of the Hamburg cadastre are given in.
var cadastreLocation = mustLoadLocation(constants.DefaultTimezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// DefaultConfig returns the settings used for the Hamburg street tree cadastre.
func DefaultConfig() Config {
	return Config{
		SafeDistance:  constants.DefaultSafeDistance,
		MergeDistance: constants.DefaultMergeDistance,
		CellSize:      constants.DefaultCellSize,
		Region: geo.BoundingBox{
			Min: geo.Point{Latitude: constants.DefaultRegionMinLat, Longitude: constants.DefaultRegionMinLon},
			Max: geo.Point{Latitude: constants.DefaultRegionMaxLat, Longitude: constants.DefaultRegionMaxLon},
		},
		NonConflictingFields: []string{constants.TagCircumference, constants.TagDiameterCrown},
		IDTags:               []string{constants.TagRefBUKEA, constants.TagRefHPA},
		Location:             cadastreLocation,
	}
}

// Validate checks the invariants between the settings.
func (c Config) Validate() error {
	if !(c.SafeDistance > 0) {
		return &errors.ValidationError{
			Field:   "safe_distance",
			Value:   c.SafeDistance,
			Message: "must be greater than zero",
		}
	}
	if !(c.MergeDistance > 0) || c.MergeDistance >= c.SafeDistance {
		return &errors.ValidationError{
			Field:   "merge_distance",
			Value:   c.MergeDistance,
			Message: fmt.Sprintf("must be greater than zero and less than safe_distance (%v)", c.SafeDistance),
		}
	}
	if !(c.CellSize > 0) {
		return &errors.ValidationError{
			Field:   "cell_size",
			Value:   c.CellSize,
			Message: "must be greater than zero",
		}
	}
	if err := geo.CheckValidity(c.Region.Min.Latitude, c.Region.Min.Longitude); err != nil {
		return errors.WrapValidation("region", err)
	}
	if err := geo.CheckValidity(c.Region.Max.Latitude, c.Region.Max.Longitude); err != nil {
		return errors.WrapValidation("region", err)
	}
	if _, err := geo.NewBoundingBox(c.Region.Min, c.Region.Max); err != nil {
		return errors.WrapValidation("region", err)
	}
	if len(c.IDTags) == 0 {
		return &errors.ValidationError{
			Field:   "id_tags",
			Message: "at least one id tag is required",
		}
	}
	return nil
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
