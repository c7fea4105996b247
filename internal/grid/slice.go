// Package grid extracts rectangular sub-grids from full-coverage 2-D
// coordinate and data arrays.
package grid

import (
	"fmt"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// EmptyRegionError indicates no grid point falls inside the requested
// bounding box: the box is outside the grid's coverage or smaller than
// the grid spacing.
type EmptyRegionError struct {
	Box domain.BoundingBox
}

func (e *EmptyRegionError) Error() string {
	return fmt.Sprintf("no grid points inside bounding box %s", e.Box)
}

// Subset is the result of slicing: the data values and coordinates for
// the grid points inside a bounding box. Lats and Lons have the same
// shape as Field. Longitudes are in -180..180 convention.
type Subset struct {
	Field [][]float64
	Lats  [][]float64
	Lons  [][]float64
}

// Rows and Cols report the subset's dimensions.
func (s Subset) Rows() int { return len(s.Field) }
func (s Subset) Cols() int {
	if len(s.Field) == 0 {
		return 0
	}
	return len(s.Field[0])
}

// Slice restricts field to the grid points whose coordinates fall
// inside box. lats and lons are 2-D arrays of the same shape as field,
// monotonically increasing along rows (latitude) and columns
// (longitude) respectively, with longitudes in the grid-native 0..360
// convention.
//
// Negative box longitudes are shifted by +360 before comparison. A box
// that straddles the 0/360 seam after that shift (minLon ends up above
// maxLon) cannot be expressed as one contiguous column range and is
// rejected. Output longitudes above 180 are shifted back to -180..180.
//
// Pure function; safe for concurrent use on independent inputs.
func Slice(field, lats, lons [][]float64, box domain.BoundingBox) (Subset, error) {
	if err := box.Validate(); err != nil {
		return Subset{}, err
	}
	if len(field) == 0 || len(field[0]) == 0 {
		return Subset{}, &EmptyRegionError{Box: box}
	}
	if len(lats) != len(field) || len(lons) != len(field) {
		return Subset{}, fmt.Errorf("coordinate arrays do not match field shape: field %dx%d, lats %d rows, lons %d rows",
			len(field), len(field[0]), len(lats), len(lons))
	}

	minLon, maxLon := box.MinLon, box.MaxLon
	if minLon < 0 {
		minLon += 360
	}
	if maxLon < 0 {
		maxLon += 360
	}
	if minLon > maxLon {
		return Subset{}, fmt.Errorf("bounding box %s straddles the 0/360 longitude seam; split the request at the seam", box)
	}

	// Row index follows the first column of lats, column index the
	// first row of lons.
	r0, r1 := contiguousRange(len(field), func(i int) float64 { return lats[i][0] }, box.MinLat, box.MaxLat)
	c0, c1 := contiguousRange(len(field[0]), func(j int) float64 { return lons[0][j] }, minLon, maxLon)
	if r0 > r1 || c0 > c1 {
		return Subset{}, &EmptyRegionError{Box: box}
	}

	out := Subset{
		Field: make([][]float64, 0, r1-r0+1),
		Lats:  make([][]float64, 0, r1-r0+1),
		Lons:  make([][]float64, 0, r1-r0+1),
	}
	for i := r0; i <= r1; i++ {
		out.Field = append(out.Field, append([]float64(nil), field[i][c0:c1+1]...))
		out.Lats = append(out.Lats, append([]float64(nil), lats[i][c0:c1+1]...))

		row := make([]float64, 0, c1-c0+1)
		for j := c0; j <= c1; j++ {
			lon := lons[i][j]
			if lon > 180 {
				lon -= 360
			}
			row = append(row, lon)
		}
		out.Lons = append(out.Lons, row)
	}
	return out, nil
}

// contiguousRange returns the inclusive index range [first, last] whose
// coordinate lies within [min, max]. coord must be monotonically
// increasing in the index. Returns first > last when the range is empty.
func contiguousRange(n int, coord func(int) float64, min, max float64) (first, last int) {
	first, last = n, -1
	for i := 0; i < n; i++ {
		v := coord(i)
		if v < min {
			continue
		}
		if v > max {
			break
		}
		if first == n {
			first = i
		}
		last = i
	}
	return first, last
}

// Coordinates expands 1-D latitude and longitude axes into the 2-D
// arrays Slice expects, row index following lats and column index
// following lons.
func Coordinates(lats, lons []float64) (lats2, lons2 [][]float64) {
	lats2 = make([][]float64, len(lats))
	lons2 = make([][]float64, len(lats))
	for i, lat := range lats {
		latRow := make([]float64, len(lons))
		for j := range lons {
			latRow[j] = lat
		}
		lats2[i] = latRow
		lons2[i] = append([]float64(nil), lons...)
	}
	return lats2, lons2
}
