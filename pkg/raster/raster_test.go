package raster_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
	"github.com/osmhh/treesync/pkg/raster"
)

var hamburg = geo.BoundingBox{
	Min: geo.MustPoint(53.3951118, 8.1044993),
	Max: geo.MustPoint(54.0276500, 10.3252805),
}

func values[T any](entries []raster.Entry[T]) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Value)
	}
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		region   geo.BoundingBox
		cellSize float64
		wantErr  bool
	}{
		{"hamburg", hamburg, 0.0005, false},
		{"whole world", geo.BoundingBox{Min: geo.MustPoint(-90, -180), Max: geo.MustPoint(90, 180)}, 1, false},
		{"zero cell", hamburg, 0, true},
		{"negative cell", hamburg, -0.1, true},
		{"cell too small", hamburg, 1e-12, true},
		{"crossing region", geo.BoundingBox{Min: geo.MustPoint(0, 170), Max: geo.MustPoint(1, -170)}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := raster.New[int](tt.region, tt.cellSize)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, idx.Len())
			assert.Equal(t, tt.region, idx.Region())
		})
	}
}

func TestInsertKeepsCoincidentPoints(t *testing.T) {
	idx, err := raster.New[string](hamburg, 0.0005)
	require.NoError(t, err)

	p := geo.MustPoint(53.55, 9.99)
	idx.Insert(p, "a")
	idx.Insert(p, "b")

	assert.Equal(t, 2, idx.Len())
	got := idx.Query(geo.BoundingBox{Min: p, Max: p})
	assert.Equal(t, []string{"a", "b"}, values(got))
}

func TestQuery(t *testing.T) {
	idx, err := raster.New[string](hamburg, 0.001)
	require.NoError(t, err)

	idx.Insert(geo.MustPoint(53.5500, 9.9900), "center")
	idx.Insert(geo.MustPoint(53.5504, 9.9904), "near")
	idx.Insert(geo.MustPoint(53.6000, 10.1000), "far")

	got := idx.Query(geo.EnclosingBoundingBox(geo.MustPoint(53.5501, 9.9901), 100))
	assert.ElementsMatch(t, []string{"center", "near"}, values(got))

	got = idx.Query(geo.EnclosingBoundingBox(geo.MustPoint(53.58, 10.05), 10))
	assert.Empty(t, got)
}

func TestQueryFindsPointsOutsideRegion(t *testing.T) {
	idx, err := raster.New[string](hamburg, 0.01)
	require.NoError(t, err)

	outside := geo.MustPoint(52.52, 13.40)
	idx.Insert(outside, "berlin")

	got := idx.Query(geo.EnclosingBoundingBox(outside, 10))
	assert.Equal(t, []string{"berlin"}, values(got))
}

func TestQueryAcrossAntimeridian(t *testing.T) {
	world := geo.BoundingBox{Min: geo.MustPoint(-90, -180), Max: geo.MustPoint(90, 180)}
	idx, err := raster.New[string](world, 0.01)
	require.NoError(t, err)

	idx.Insert(geo.MustPoint(0, 179.99999), "east")
	idx.Insert(geo.MustPoint(0, -179.99999), "west")
	idx.Insert(geo.MustPoint(0, 180), "border")
	idx.Insert(geo.MustPoint(0, 0), "greenwich")

	box := geo.EnclosingBoundingBox(geo.MustPoint(0, 180), 50)
	require.True(t, box.CrossesAntimeridian())

	got := idx.Query(box)
	assert.ElementsMatch(t, []string{"east", "west", "border"}, values(got))
}

func TestQueryNoFalseNegatives(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, cellSize := range []float64{0.0005, 0.003, 0.05} {
		idx, err := raster.New[int](hamburg, cellSize)
		require.NoError(t, err)

		points := make([]geo.Point, 2000)
		for i := range points {
			// include some points slightly outside the region
			lat := 53.39 + r.Float64()*0.65
			lon := 8.10 + r.Float64()*2.23
			points[i] = geo.MustPoint(lat, lon)
			idx.Insert(points[i], i)
		}

		for q := 0; q < 200; q++ {
			center := points[r.Intn(len(points))]
			box := geo.EnclosingBoundingBox(center, 1+r.Float64()*500)
			found := make(map[int]bool)
			for _, e := range idx.Query(box) {
				found[e.Value] = true
			}
			for i, p := range points {
				if box.Contains(p) {
					assert.True(t, found[i], "cell %v: point %d %v in %v not returned", cellSize, i, p, box)
				}
			}
		}
	}
}

func TestQueryIsDeterministic(t *testing.T) {
	build := func() *raster.Index[int] {
		idx, err := raster.New[int](hamburg, 0.0005)
		require.NoError(t, err)
		r := rand.New(rand.NewSource(11))
		for i := 0; i < 500; i++ {
			idx.Insert(geo.MustPoint(53.5+r.Float64()*0.01, 10+r.Float64()*0.01), i)
		}
		return idx
	}

	box := geo.BoundingBox{Min: geo.MustPoint(53.5, 10), Max: geo.MustPoint(53.51, 10.01)}
	a, b := build().Query(box), build().Query(box)
	assert.Equal(t, values(a), values(b))
	assert.Len(t, a, 500)
}
