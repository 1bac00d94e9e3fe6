package geo

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/osmhh/treesync/pkg/errors"
)

// BoundingBox is an axis-aligned box between Min (south-west) and Max (north-east).
// Min.Longitude may be greater than Max.Longitude if the box crosses the 180th meridian.
type BoundingBox struct {
	Min Point `json:"min" yaml:"min"`
	Max Point `json:"max" yaml:"max"`
}

// NewBoundingBox returns a box or a ValidationError if min is north of max.
func NewBoundingBox(min, max Point) (BoundingBox, error) {
	if min.Latitude > max.Latitude {
		return BoundingBox{}, &errors.ValidationError{
			Field:   "bbox",
			Value:   [2]Point{min, max},
			Message: fmt.Sprintf("min latitude %v is greater than max latitude %v", min.Latitude, max.Latitude),
		}
	}
	return BoundingBox{Min: min, Max: max}, nil
}

// ParseBoundingBox builds a box from "minLat,minLon,maxLat,maxLon" values.
func ParseBoundingBox(minLat, minLon, maxLat, maxLon float64) (BoundingBox, error) {
	min, err := NewPoint(minLat, minLon)
	if err != nil {
		return BoundingBox{}, err
	}
	max, err := NewPoint(maxLat, maxLon)
	if err != nil {
		return BoundingBox{}, err
	}
	return NewBoundingBox(min, max)
}

// CrossesAntimeridian reports whether the box wraps around the 180th meridian.
func (b BoundingBox) CrossesAntimeridian() bool {
	return NormalizeLongitude(b.Min.Longitude) > NormalizeLongitude(b.Max.Longitude)
}

// Contains reports whether p lies inside the box, borders included.
func (b BoundingBox) Contains(p Point) bool {
	if p.Latitude < b.Min.Latitude || p.Latitude > b.Max.Latitude {
		return false
	}
	lon := NormalizeLongitude(p.Longitude)
	minLon := NormalizeLongitude(b.Min.Longitude)
	maxLon := NormalizeLongitude(b.Max.Longitude)
	// +180 normalizes to -180; treat an unnormalized +180 border as inclusive
	if b.Max.Longitude == 180 {
		maxLon = 180
	}
	if minLon > maxLon {
		return lon >= minLon || lon <= maxLon
	}
	return lon >= minLon && lon <= maxLon
}

// String formats the box like the Overpass bbox filter: "s,w,n,e".
func (b BoundingBox) String() string {
	return fmt.Sprintf("%.7f,%.7f,%.7f,%.7f", b.Min.Latitude, b.Min.Longitude, b.Max.Latitude, b.Max.Longitude)
}

// ToOrb converts the box into an orb.Bound.
func (b BoundingBox) ToOrb() orb.Bound {
	return orb.Bound{Min: b.Min.ToOrb(), Max: b.Max.ToOrb()}
}
