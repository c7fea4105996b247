// Package processor computes per-product data points and summaries from
// the current dataset of a family, restricted to a bounding box.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/grid"
)

// Request is one product computation over a bounding box.
type Request struct {
	Box domain.BoundingBox
	// Unit selects the output unit where a product supports more than
	// one (wave height: "feet" or "meters"). Empty means the default.
	Unit string
}

// Point is one grid cell's measurements. It marshals flat, with the
// measurement fields alongside latitude and longitude.
type Point struct {
	Latitude  float64
	Longitude float64
	Values    map[string]float64
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	flat := make(map[string]float64, len(p.Values)+2)
	flat["latitude"] = p.Latitude
	flat["longitude"] = p.Longitude
	for k, v := range p.Values {
		flat[k] = v
	}
	return json.Marshal(flat)
}

// Result is a product computation's output.
type Result struct {
	Points      []Point
	Summary     map[string]float64
	Indicators  map[string]bool
	Description string
	ValidTime   time.Time
	Dataset     domain.PublishedDataset
	// Image is the rendered plot, when a Renderer is wired. Opaque
	// encoded bytes; the transport layer decides the final encoding.
	Image []byte
}

// Processor computes one product.
type Processor interface {
	Product() string
	Process(ctx context.Context, req Request) (*Result, error)
}

// Renderer turns a sliced numeric grid into an opaque encoded image.
// Processors hand it numbers only; pixel formats are its business.
type Renderer interface {
	Render(product string, field grid.Subset, box domain.BoundingBox, validTime time.Time) ([]byte, error)
}

// sliceFields reads each named variable and restricts it to the box.
// All fields of one file share coordinates, so they slice identically.
func sliceFields(r dataset.FieldReader, box domain.BoundingBox, names ...string) (map[string]grid.Subset, error) {
	lats, lons, err := r.Coordinates()
	if err != nil {
		return nil, fmt.Errorf("read coordinates: %w", err)
	}
	out := make(map[string]grid.Subset, len(names))
	for _, name := range names {
		vals, err := r.ReadField(name)
		if err != nil {
			return nil, err
		}
		sub, err := grid.Slice(vals, lats, lons, box)
		if err != nil {
			return nil, err
		}
		out[name] = sub
	}
	return out, nil
}

// scale multiplies every cell in place and returns the subset.
func scale(s grid.Subset, factor float64) grid.Subset {
	for i := range s.Field {
		for j := range s.Field[i] {
			s.Field[i][j] *= factor
		}
	}
	return s
}

// shift adds delta to every cell in place and returns the subset.
func shift(s grid.Subset, delta float64) grid.Subset {
	for i := range s.Field {
		for j := range s.Field[i] {
			s.Field[i][j] += delta
		}
	}
	return s
}

// stats computes min, max and mean over the subset, ignoring NaN cells.
// ok is false when every cell is NaN.
func stats(s grid.Subset) (min, max, mean float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	var sum float64
	var n int
	for i := range s.Field {
		for _, v := range s.Field[i] {
			if math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return min, max, sum / float64(n), true
}

// anyAbove reports whether any non-NaN cell exceeds the threshold.
func anyAbove(s grid.Subset, threshold float64) bool {
	for i := range s.Field {
		for _, v := range s.Field[i] {
			if !math.IsNaN(v) && v > threshold {
				return true
			}
		}
	}
	return false
}

// anyBelow reports whether any non-NaN cell is under the threshold.
func anyBelow(s grid.Subset, threshold float64) bool {
	for i := range s.Field {
		for _, v := range s.Field[i] {
			if !math.IsNaN(v) && v < threshold {
				return true
			}
		}
	}
	return false
}

// anyWhere reports whether pred holds at any cell where both subsets
// are non-NaN.
func anyWhere(a, b grid.Subset, pred func(av, bv float64) bool) bool {
	for i := range a.Field {
		for j := range a.Field[i] {
			av, bv := a.Field[i][j], b.Field[i][j]
			if math.IsNaN(av) || math.IsNaN(bv) {
				continue
			}
			if pred(av, bv) {
				return true
			}
		}
	}
	return false
}
