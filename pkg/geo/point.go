// Package geo provides the spherical-earth primitives used to match cadastre
// trees against mapped trees: a validated point type, bounding boxes, great-circle
// distance and destination-point projection.
package geo

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/osmhh/treesync/pkg/errors"
)

// Point is a WGS84 position in degrees. The zero value is a valid point
// (0°, 0°); use NewPoint to construct points from untrusted input.
type Point struct {
	Latitude  float64 `json:"lat" yaml:"lat"`
	Longitude float64 `json:"lon" yaml:"lon"`
}

// NewPoint returns a point or a ValidationError if the coordinates are out of range.
func NewPoint(lat, lon float64) (Point, error) {
	if err := CheckValidity(lat, lon); err != nil {
		return Point{}, err
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

// MustPoint is like NewPoint but panics on invalid coordinates. Intended for
// constants and tests.
func MustPoint(lat, lon float64) Point {
	p, err := NewPoint(lat, lon)
	if err != nil {
		panic(err)
	}
	return p
}

// CheckValidity reports whether lat/lon form a valid position.
// NaN fails both range checks.
func CheckValidity(lat, lon float64) error {
	if !(lat >= -90 && lat <= 90) || !(lon >= -180 && lon <= 180) {
		return &errors.ValidationError{
			Field:   "position",
			Value:   [2]float64{lat, lon},
			Message: fmt.Sprintf("latitude %v, longitude %v is not a valid position", lat, lon),
		}
	}
	return nil
}

// String formats the point as "lat,lon" with 7 decimals, the precision OSM stores.
func (p Point) String() string {
	return fmt.Sprintf("%.7f,%.7f", p.Latitude, p.Longitude)
}

// ToOrb converts the point into an orb.Point (lon, lat order).
func (p Point) ToOrb() orb.Point {
	return orb.Point{p.Longitude, p.Latitude}
}

// FromOrb converts an orb.Point into a validated Point.
func FromOrb(p orb.Point) (Point, error) {
	return NewPoint(p.Lat(), p.Lon())
}
