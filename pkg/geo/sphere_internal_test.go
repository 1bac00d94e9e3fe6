package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslatedFoldsPoles(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantLat float64
		wantLon float64
	}{
		{"in range", 10, 20, 10, 20},
		{"past north pole", 91, 10, 89, -170},
		{"past south pole", -92, -170, -88, 10},
		{"wrapped longitude", 0, 190, 0, -170},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translated(tt.lat, tt.lon)
			assert.InDelta(t, tt.wantLat, got.Latitude, 1e-9)
			assert.InDelta(t, tt.wantLon, got.Longitude, 1e-9)
		})
	}
}
