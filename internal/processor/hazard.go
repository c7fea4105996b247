package processor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/grid"
)

// Hazard evaluates marine hazard indicators over the atmospheric
// family: storms, severe storms, low visibility, icing, temperature
// extremes and fog.
type Hazard struct {
	handle *dataset.Handle
	render Renderer
}

// NewHazard creates the hazard processor. render may be nil.
func NewHazard(handle *dataset.Handle, render Renderer) *Hazard {
	return &Hazard{handle: handle, render: render}
}

// Product implements Processor.
func (h *Hazard) Product() string { return "hazard" }

// Process implements Processor.
func (h *Hazard) Process(_ context.Context, req Request) (*Result, error) {
	lease, err := h.handle.Acquire()
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	fields, err := sliceFields(lease.Reader(), req.Box,
		"gust", "prate", "cape", "vis", "tmp2m", "rh2m", "cpofp")
	if err != nil {
		return nil, err
	}

	gust := scale(fields["gust"], MetersPerSecondToKnots)
	rain := scale(fields["prate"], PrecipRateToMillimetersPerHour)
	cape := fields["cape"]
	visNm := scale(fields["vis"], 1.0/MetersPerNauticalMile)
	tempC := shift(fields["tmp2m"], -KelvinOffset)
	rh := fields["rh2m"]
	frozen := fields["cpofp"]

	indicators := map[string]bool{
		"storms":          anyAbove(rain, 5) || anyAbove(cape, 1000),
		"severe_storms":   anyWhere(cape, rain, func(c, r float64) bool { return c > 1500 && r > 10 }),
		"low_visibility":  anyBelow(visNm, 1),
		"icing_risk":      anyWhere(frozen, tempC, func(f, t float64) bool { return f > 50 && t < 0 }),
		"cold_temps":      anyBelow(tempC, 0),
		"hot_temps":       anyAbove(tempC, 35),
		"fog_risk":        anyWhere(rh, visNm, func(r, v float64) bool { return r > 95 && v*MetersPerNauticalMile < 1000 }),
		"hazardous_winds": anyAbove(gust, 34),
	}

	summary := make(map[string]float64)
	if _, max, _, ok := stats(gust); ok {
		summary["max_gust_knots"] = max
	}
	if _, max, _, ok := stats(rain); ok {
		summary["max_precip_rate_mmh"] = max
	}
	if _, max, _, ok := stats(cape); ok {
		summary["max_cape_jkg"] = max
	}
	if min, _, _, ok := stats(visNm); ok {
		summary["min_visibility_nm"] = min
	}
	if min, max, _, ok := stats(tempC); ok {
		summary["min_temp_c"] = min
		summary["max_temp_c"] = max
	}
	if _, max, _, ok := stats(rh); ok {
		summary["max_relative_humidity_pct"] = max
	}
	if len(summary) == 0 {
		return nil, &grid.EmptyRegionError{Box: req.Box}
	}

	var points []Point
	for i := range gust.Field {
		for j, g := range gust.Field[i] {
			vals := map[string]float64{}
			if !math.IsNaN(g) {
				vals["wind_gust_knots"] = g
			}
			if v := rain.Field[i][j]; !math.IsNaN(v) {
				vals["precip_rate_mmh"] = v
			}
			if v := visNm.Field[i][j]; !math.IsNaN(v) {
				vals["visibility_nm"] = v
			}
			if v := tempC.Field[i][j]; !math.IsNaN(v) {
				vals["temp_c"] = v
			}
			if len(vals) == 0 {
				continue
			}
			points = append(points, Point{
				Latitude:  gust.Lats[i][j],
				Longitude: gust.Lons[i][j],
				Values:    vals,
			})
		}
	}

	res := &Result{
		Points:      points,
		Summary:     summary,
		Indicators:  indicators,
		Description: hazardDescription(indicators),
		ValidTime:   lease.Dataset().ValidTime(),
		Dataset:     lease.Dataset(),
	}
	if h.render != nil {
		img, err := h.render.Render(h.Product(), gust, req.Box, res.ValidTime)
		if err != nil {
			return nil, fmt.Errorf("render hazard plot: %w", err)
		}
		res.Image = img
	}
	return res, nil
}

func hazardDescription(ind map[string]bool) string {
	var parts []string
	if ind["hazardous_winds"] {
		parts = append(parts, "Wind gusts above 34 knots indicate hazardous conditions.")
	}
	if ind["storms"] {
		parts = append(parts, "Potential storms with heavy rain (>5 mm/h) or instability (CAPE > 1000 J/kg).")
	}
	if ind["severe_storms"] {
		parts = append(parts, "Severe storm risk where high instability coincides with intense rainfall.")
	}
	if ind["low_visibility"] {
		parts = append(parts, "Visibility below 1 nautical mile poses navigation hazards.")
	}
	if ind["icing_risk"] {
		parts = append(parts, "Icing risk where frozen precipitation meets sub-zero temperatures.")
	}
	if ind["cold_temps"] {
		parts = append(parts, "Sub-zero air temperatures expected.")
	}
	if ind["hot_temps"] {
		parts = append(parts, "Heat risk with temperatures above 35°C.")
	}
	if ind["fog_risk"] {
		parts = append(parts, "Fog risk where relative humidity exceeds 95% and visibility drops below 1 km.")
	}
	if len(parts) == 0 {
		return "No significant hazards are expected, but vigilance is advised."
	}
	return strings.Join(parts, " ")
}

var _ Processor = (*Hazard)(nil)
