// Package raster provides a uniform grid index over a geographic region.
//
// The index trades precision for speed: a range query returns every entry of
// every cell the query box overlaps, so callers must apply an exact distance
// test to the results. Points outside the region are filed into the nearest
// border cell and are still returned by queries that reach them.
package raster

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/osmhh/treesync/pkg/errors"
	"github.com/osmhh/treesync/pkg/geo"
)

// Entry is an indexed point together with its payload.
type Entry[T any] struct {
	Point geo.Point
	Value T
}

// Index is a grid of buckets covering a region. Cell size is in degrees,
// so cells are narrower in meters the further they are from the equator.
//
// An Index is not safe for concurrent Insert; concurrent Query calls are safe
// once inserting is done.
type Index[T any] struct {
	region   geo.BoundingBox
	cellSize float64
	rows     int
	cols     int
	cells    map[cell][]Entry[T]
	size     int
}

type cell struct {
	row int
	col int
}

// New creates an empty index over region with the given cell size in degrees.
func New[T any](region geo.BoundingBox, cellSize float64) (*Index[T], error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, &errors.ValidationError{
			Field:   "cell_size",
			Value:   cellSize,
			Message: "must be a positive number of degrees",
		}
	}
	if region.Min.Longitude > region.Max.Longitude {
		return nil, &errors.ValidationError{
			Field:   "region",
			Value:   region.String(),
			Message: "regions crossing the antimeridian are not supported",
		}
	}

	height := math.Floor((region.Max.Latitude-region.Min.Latitude)/cellSize) + 1
	width := math.Floor((region.Max.Longitude-region.Min.Longitude)/cellSize) + 1
	if height > math.MaxInt32 || width > math.MaxInt32 {
		return nil, &errors.ValidationError{
			Field:   "cell_size",
			Value:   cellSize,
			Message: fmt.Sprintf("too small for region %s", region),
		}
	}
	rows, cols := int(height), int(width)
	return &Index[T]{
		region:   region,
		cellSize: cellSize,
		rows:     rows,
		cols:     cols,
		cells:    make(map[cell][]Entry[T]),
	}, nil
}

// Insert files v under p. Several entries may share a point or a cell.
func (idx *Index[T]) Insert(p geo.Point, v T) {
	c := cell{row: idx.row(p.Latitude), col: idx.col(p.Longitude)}
	idx.cells[c] = append(idx.cells[c], Entry[T]{Point: p, Value: v})
	idx.size++
}

// Len returns the number of inserted entries.
func (idx *Index[T]) Len() int {
	return idx.size
}

// Region returns the covered region.
func (idx *Index[T]) Region() geo.BoundingBox {
	return idx.region
}

// Query returns all entries in the cells overlapped by box. The result may
// contain entries outside box but never misses one inside it. Entries are
// returned in row, column and insertion order.
func (idx *Index[T]) Query(box geo.BoundingBox) []Entry[T] {
	minRow, maxRow := idx.row(box.Min.Latitude), idx.row(box.Max.Latitude)

	if !box.CrossesAntimeridian() {
		return idx.collect(nil, minRow, maxRow, idx.col(box.Min.Longitude), idx.col(box.Max.Longitude))
	}

	west := geo.NormalizeLongitude(box.Min.Longitude)
	east := geo.NormalizeLongitude(box.Max.Longitude)
	out := idx.collect(nil, minRow, maxRow, idx.col(west), idx.col(180))
	return idx.collect(out, minRow, maxRow, idx.col(-180), idx.col(east))
}

func (idx *Index[T]) collect(out []Entry[T], minRow, maxRow, minCol, maxCol int) []Entry[T] {
	if minCol > maxCol {
		return out
	}
	// sparse grids: walking the map is cheaper than walking a huge box
	if (maxRow-minRow+1)*(maxCol-minCol+1) > len(idx.cells) {
		return idx.collectSparse(out, minRow, maxRow, minCol, maxCol)
	}
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			out = append(out, idx.cells[cell{row: row, col: col}]...)
		}
	}
	return out
}

func (idx *Index[T]) collectSparse(out []Entry[T], minRow, maxRow, minCol, maxCol int) []Entry[T] {
	var hits []cell
	for c := range idx.cells {
		if c.row >= minRow && c.row <= maxRow && c.col >= minCol && c.col <= maxCol {
			hits = append(hits, c)
		}
	}
	slices.SortFunc(hits, func(a, b cell) int {
		return cmp.Or(cmp.Compare(a.row, b.row), cmp.Compare(a.col, b.col))
	})
	for _, c := range hits {
		out = append(out, idx.cells[c]...)
	}
	return out
}

func (idx *Index[T]) row(lat float64) int {
	return clamp(int(math.Floor((lat-idx.region.Min.Latitude)/idx.cellSize)), idx.rows)
}

func (idx *Index[T]) col(lon float64) int {
	return clamp(int(math.Floor((lon-idx.region.Min.Longitude)/idx.cellSize)), idx.cols)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
