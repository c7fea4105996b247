package domain

import "fmt"

// BoundingBox is a geographic rectangle in degrees. Latitudes use -90..90
// and longitudes may be given in either -180..180 or 0..360 convention;
// grid extraction normalizes to the grid's native convention.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Validate reports whether the box is internally consistent: ordered
// bounds and coordinates inside the geographic ranges.
func (b BoundingBox) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("latitude out of range [-90, 90]: %g..%g", b.MinLat, b.MaxLat)
	}
	if b.MinLon < -180 || b.MaxLon > 360 || b.MinLon > 360 || b.MaxLon < -180 {
		return fmt.Errorf("longitude out of range [-180, 360]: %g..%g", b.MinLon, b.MaxLon)
	}
	if b.MinLat > b.MaxLat {
		return fmt.Errorf("min_lat %g exceeds max_lat %g", b.MinLat, b.MaxLat)
	}
	if b.MinLon > b.MaxLon {
		return fmt.Errorf("min_lon %g exceeds max_lon %g", b.MinLon, b.MaxLon)
	}
	return nil
}

// Buffered returns a copy of the box grown by pad degrees on every side,
// clamped to valid latitudes. Longitudes are left unclamped; extraction
// handles wrap normalization.
func (b BoundingBox) Buffered(pad float64) BoundingBox {
	out := BoundingBox{
		MinLat: b.MinLat - pad,
		MaxLat: b.MaxLat + pad,
		MinLon: b.MinLon - pad,
		MaxLon: b.MaxLon + pad,
	}
	if out.MinLat < -90 {
		out.MinLat = -90
	}
	if out.MaxLat > 90 {
		out.MaxLat = 90
	}
	return out
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%g..%g, %g..%g]", b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}

// BoxAround returns a square box of pad degrees on each side of a point.
func BoxAround(lat, lon, pad float64) BoundingBox {
	return BoundingBox{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}.Buffered(pad)
}
