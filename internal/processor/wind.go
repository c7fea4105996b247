package processor

import (
	"context"
	"fmt"
	"math"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/grid"
)

// Wind computes 10 m wind speed from the atmospheric family's u/v
// components.
type Wind struct {
	handle *dataset.Handle
	render Renderer
}

// NewWind creates the wind processor. render may be nil.
func NewWind(handle *dataset.Handle, render Renderer) *Wind {
	return &Wind{handle: handle, render: render}
}

// Product implements Processor.
func (w *Wind) Product() string { return "wind" }

// Process implements Processor.
func (w *Wind) Process(_ context.Context, req Request) (*Result, error) {
	lease, err := w.handle.Acquire()
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	fields, err := sliceFields(lease.Reader(), req.Box, "ugrd10m", "vgrd10m")
	if err != nil {
		return nil, err
	}
	u, v := fields["ugrd10m"], fields["vgrd10m"]

	// Speed in knots from the component magnitudes.
	speed := grid.Subset{Field: make([][]float64, u.Rows()), Lats: u.Lats, Lons: u.Lons}
	for i := range u.Field {
		row := make([]float64, len(u.Field[i]))
		for j := range u.Field[i] {
			row[j] = math.Hypot(u.Field[i][j], v.Field[i][j]) * MetersPerSecondToKnots
		}
		speed.Field[i] = row
	}

	// Gusts are not in every revision of the file; include them when
	// present.
	var gust *grid.Subset
	if gf, err := sliceFields(lease.Reader(), req.Box, "gust"); err == nil {
		g := scale(gf["gust"], MetersPerSecondToKnots)
		gust = &g
	} else if !domain.IsFieldNotFound(err) {
		return nil, err
	}

	var points []Point
	for i := range speed.Field {
		for j, kt := range speed.Field[i] {
			if math.IsNaN(kt) {
				continue
			}
			vals := map[string]float64{"wind_speed_knots": kt}
			if gust != nil && !math.IsNaN(gust.Field[i][j]) {
				vals["wind_gust_knots"] = gust.Field[i][j]
			}
			points = append(points, Point{
				Latitude:  speed.Lats[i][j],
				Longitude: speed.Lons[i][j],
				Values:    vals,
			})
		}
	}

	min, max, mean, ok := stats(speed)
	if !ok {
		return nil, &grid.EmptyRegionError{Box: req.Box}
	}

	res := &Result{
		Points: points,
		Summary: map[string]float64{
			"min_wind_speed_knots":  min,
			"max_wind_speed_knots":  max,
			"mean_wind_speed_knots": mean,
		},
		Description: windDescription(min, max, mean),
		ValidTime:   lease.Dataset().ValidTime(),
		Dataset:     lease.Dataset(),
	}
	if w.render != nil {
		img, err := w.render.Render(w.Product(), speed, req.Box, res.ValidTime)
		if err != nil {
			return nil, fmt.Errorf("render wind plot: %w", err)
		}
		res.Image = img
	}
	return res, nil
}

func windDescription(min, max, mean float64) string {
	var kind string
	switch {
	case max < 10:
		kind = "Light winds"
	case max < 20:
		kind = "Moderate winds"
	case max < 30:
		kind = "Strong winds"
	default:
		kind = "Very strong winds"
	}
	return fmt.Sprintf("%s over the area, ranging from %.1f to %.1f knots with a mean of %.1f knots.",
		kind, min, max, mean)
}

var _ Processor = (*Wind)(nil)
