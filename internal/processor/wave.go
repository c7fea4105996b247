package processor

import (
	"context"
	"fmt"
	"math"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/grid"
)

// Wave computes significant wave height, primary period and direction
// from the wave family.
type Wave struct {
	handle *dataset.Handle
	render Renderer
}

// NewWave creates the wave processor. render may be nil.
func NewWave(handle *dataset.Handle, render Renderer) *Wave {
	return &Wave{handle: handle, render: render}
}

// Product implements Processor.
func (w *Wave) Product() string { return "wave" }

// Process implements Processor. req.Unit selects "feet" (default) or
// "meters" for the height values.
func (w *Wave) Process(_ context.Context, req Request) (*Result, error) {
	unit := req.Unit
	if unit == "" {
		unit = "feet"
	}
	if unit != "feet" && unit != "meters" {
		return nil, fmt.Errorf("unit must be \"meters\" or \"feet\", got %q", unit)
	}

	lease, err := w.handle.Acquire()
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	fields, err := sliceFields(lease.Reader(), req.Box, "htsgwsfc", "perpwsfc", "dirpwsfc")
	if err != nil {
		return nil, err
	}
	height, period, dir := fields["htsgwsfc"], fields["perpwsfc"], fields["dirpwsfc"]
	if unit == "feet" {
		height = scale(height, MetersToFeet)
	}

	// Wave fields are NaN over land; a point needs all three values.
	var points []Point
	for i := range height.Field {
		for j, h := range height.Field[i] {
			p, d := period.Field[i][j], dir.Field[i][j]
			if math.IsNaN(h) || math.IsNaN(p) || math.IsNaN(d) {
				continue
			}
			points = append(points, Point{
				Latitude:  height.Lats[i][j],
				Longitude: height.Lons[i][j],
				Values: map[string]float64{
					"wave_height":        h,
					"wave_period_s":      p,
					"wave_direction_deg": d,
				},
			})
		}
	}

	min, max, mean, ok := stats(height)
	if !ok {
		// All-land boxes produce no usable cells.
		return nil, &grid.EmptyRegionError{Box: req.Box}
	}
	_, _, meanPeriod, _ := stats(period)

	res := &Result{
		Points: points,
		Summary: map[string]float64{
			"min_wave_height":    min,
			"max_wave_height":    max,
			"mean_wave_height":   mean,
			"mean_wave_period_s": meanPeriod,
		},
		Description: waveDescription(max, meanPeriod, unit),
		ValidTime:   lease.Dataset().ValidTime(),
		Dataset:     lease.Dataset(),
	}
	if w.render != nil {
		img, err := w.render.Render(w.Product(), height, req.Box, res.ValidTime)
		if err != nil {
			return nil, fmt.Errorf("render wave plot: %w", err)
		}
		res.Image = img
	}
	return res, nil
}

func waveDescription(max, meanPeriod float64, unit string) string {
	// Classification thresholds are in feet regardless of output unit.
	maxFt := max
	if unit == "meters" {
		maxFt = max * MetersToFeet
	}
	var kind string
	switch {
	case maxFt < 2:
		kind = "Calm seas"
	case maxFt < 4:
		kind = "Slight seas"
	case maxFt < 8:
		kind = "Moderate seas"
	default:
		kind = "Rough seas"
	}
	return fmt.Sprintf("%s with wave heights up to %.1f %s and a mean period of %.0f seconds.",
		kind, max, unit, meanPeriod)
}

var _ Processor = (*Wave)(nil)
