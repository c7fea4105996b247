package processor

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/grid"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// fakeReader serves in-memory fields on a lat 30..50, lon 280..300 grid
// at 0.25 degree spacing.
type fakeReader struct {
	lats, lons [][]float64
	fields     map[string][][]float64
}

func newFakeReader(fam domain.Family) *fakeReader {
	latAxis := span(30, 50, 0.25)
	lonAxis := span(280, 300, 0.25)
	lats, lons := grid.Coordinates(latAxis, lonAxis)
	return &fakeReader{lats: lats, lons: lons, fields: map[string][][]float64{}}
}

func span(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

func (f *fakeReader) constant(name string, v float64) *fakeReader {
	field := make([][]float64, len(f.lats))
	for i := range field {
		row := make([]float64, len(f.lons[0]))
		for j := range row {
			row[j] = v
		}
		field[i] = row
	}
	f.fields[name] = field
	return f
}

func (f *fakeReader) ReadField(name string) ([][]float64, error) {
	field, ok := f.fields[name]
	if !ok {
		return nil, &domain.FieldNotFoundError{Family: domain.FamilyAtmospheric, Field: name}
	}
	// Copies keep mutation by one request invisible to the next.
	out := make([][]float64, len(field))
	for i := range field {
		out[i] = append([]float64(nil), field[i]...)
	}
	return out, nil
}

func (f *fakeReader) Coordinates() ([][]float64, [][]float64, error) {
	return f.lats, f.lons, nil
}

func (f *fakeReader) Close() error { return nil }

// readyHandle builds a Handle already swapped onto the given reader.
func readyHandle(t *testing.T, fam domain.Family, r *fakeReader) *dataset.Handle {
	t.Helper()
	reg := registry.Open(filepath.Join(t.TempDir(), "registry.txt"))
	h := dataset.NewHandle(fam, reg, func(string) (dataset.FieldReader, error) { return r, nil },
		observability.NopLogger(), observability.NewMetricsForTesting())
	require.NoError(t, reg.Publish(domain.PublishedDataset{
		Family:       fam,
		Path:         "/data/" + string(fam) + ".nc",
		DownloadTime: time.Now().UTC(),
		Metadata: domain.FamilyMetadata{
			Cycle:        domain.ForecastCycle{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Hour: 12},
			Resolution:   "0p25",
			ForecastHour: "f000",
		},
	}))
	h.Reload()
	require.True(t, h.Ready())
	return h
}

var testBox = domain.BoundingBox{MinLat: 37.5, MaxLat: 42.5, MinLon: -72.5, MaxLon: -67.5}

func TestWindSpeedFromComponents(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).constant("ugrd10m", 3).constant("vgrd10m", 4)
	w := NewWind(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	res, err := w.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)

	require.NotEmpty(t, res.Points)
	assert.Len(t, res.Points, 21*21)
	for _, p := range res.Points {
		assert.InDelta(t, 9.72, p.Values["wind_speed_knots"], 0.01)
		assert.GreaterOrEqual(t, p.Longitude, -72.5)
		assert.LessOrEqual(t, p.Longitude, -67.5)
	}
	assert.InDelta(t, 9.72, res.Summary["max_wind_speed_knots"], 0.01)
	assert.Contains(t, res.Description, "Light winds")
	assert.Equal(t, time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC), res.ValidTime)
	assert.Equal(t, "0p25", res.Dataset.Metadata.Resolution)
}

func TestWindGustIncludedWhenPresent(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).
		constant("ugrd10m", 10).constant("vgrd10m", 0).constant("gust", 15)
	w := NewWind(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	res, err := w.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	assert.InDelta(t, 15*MetersPerSecondToKnots, res.Points[0].Values["wind_gust_knots"], 0.01)
	assert.Contains(t, res.Description, "Moderate winds")
}

func TestWindMissingComponentField(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).constant("ugrd10m", 3)
	w := NewWind(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	_, err := w.Process(context.Background(), Request{Box: testBox})
	require.Error(t, err)
	assert.True(t, domain.IsFieldNotFound(err))
}

func TestWindNotReady(t *testing.T) {
	reg := registry.Open(filepath.Join(t.TempDir(), "registry.txt"))
	h := dataset.NewHandle(domain.FamilyAtmospheric, reg,
		func(string) (dataset.FieldReader, error) { return nil, nil },
		observability.NopLogger(), observability.NewMetricsForTesting())
	w := NewWind(h, nil)

	_, err := w.Process(context.Background(), Request{Box: testBox})
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestWaveHeightsInFeetByDefault(t *testing.T) {
	r := newFakeReader(domain.FamilyWave).
		constant("htsgwsfc", 1).constant("perpwsfc", 8).constant("dirpwsfc", 120)
	w := NewWave(readyHandle(t, domain.FamilyWave, r), nil)

	res, err := w.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	p := res.Points[0]
	assert.InDelta(t, 3.28, p.Values["wave_height"], 0.01)
	assert.InDelta(t, 8, p.Values["wave_period_s"], 1e-9)
	assert.InDelta(t, 120, p.Values["wave_direction_deg"], 1e-9)
	assert.Contains(t, res.Description, "Slight seas")
}

func TestWaveHeightsInMeters(t *testing.T) {
	r := newFakeReader(domain.FamilyWave).
		constant("htsgwsfc", 3).constant("perpwsfc", 10).constant("dirpwsfc", 200)
	w := NewWave(readyHandle(t, domain.FamilyWave, r), nil)

	res, err := w.Process(context.Background(), Request{Box: testBox, Unit: "meters"})
	require.NoError(t, err)
	assert.InDelta(t, 3, res.Points[0].Values["wave_height"], 1e-9)
	// 3 m is just under 10 ft: rough.
	assert.Contains(t, res.Description, "Rough seas")

	_, err = w.Process(context.Background(), Request{Box: testBox, Unit: "fathoms"})
	assert.Error(t, err)
}

func TestWaveSkipsLandCells(t *testing.T) {
	r := newFakeReader(domain.FamilyWave).
		constant("htsgwsfc", 0.5).constant("perpwsfc", 6).constant("dirpwsfc", 90)
	// Mask one in-box cell as land. Row/col 40 is lat 40 / lon 290.
	r.fields["htsgwsfc"][40][40] = math.NaN()
	w := NewWave(readyHandle(t, domain.FamilyWave, r), nil)

	res, err := w.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	assert.Len(t, res.Points, 21*21-1)
	assert.Contains(t, res.Description, "Calm seas")
}

func TestHazardIndicators(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).
		constant("gust", 5).
		constant("prate", 0).
		constant("cape", 1200). // storms
		constant("vis", 20000).
		constant("tmp2m", 290).
		constant("rh2m", 60).
		constant("cpofp", 0)
	h := NewHazard(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	res, err := h.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)

	assert.True(t, res.Indicators["storms"])
	assert.False(t, res.Indicators["severe_storms"])
	assert.False(t, res.Indicators["low_visibility"])
	assert.False(t, res.Indicators["fog_risk"])
	assert.False(t, res.Indicators["cold_temps"])
	assert.Contains(t, res.Description, "Potential storms")
	assert.InDelta(t, 1200, res.Summary["max_cape_jkg"], 1e-9)
	assert.InDelta(t, 290-KelvinOffset, res.Summary["max_temp_c"], 1e-9)
}

func TestHazardFogAndVisibility(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).
		constant("gust", 2).
		constant("prate", 0).
		constant("cape", 100).
		constant("vis", 800). // under 1 km and under 1 nm
		constant("tmp2m", 278).
		constant("rh2m", 98).
		constant("cpofp", 0)
	h := NewHazard(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	res, err := h.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	assert.True(t, res.Indicators["low_visibility"])
	assert.True(t, res.Indicators["fog_risk"])
	assert.Contains(t, res.Description, "Fog risk")
	assert.InDelta(t, 800.0/MetersPerNauticalMile, res.Summary["min_visibility_nm"], 1e-9)
}

func TestHazardQuietConditions(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).
		constant("gust", 3).
		constant("prate", 0).
		constant("cape", 50).
		constant("vis", 20000).
		constant("tmp2m", 288).
		constant("rh2m", 70).
		constant("cpofp", 0)
	h := NewHazard(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	res, err := h.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	for name, on := range res.Indicators {
		assert.False(t, on, "indicator %s", name)
	}
	assert.Contains(t, res.Description, "No significant hazards")
}

type fakeRenderer struct{ calls int }

func (f *fakeRenderer) Render(product string, field grid.Subset, box domain.BoundingBox, _ time.Time) ([]byte, error) {
	f.calls++
	return []byte("png:" + product), nil
}

func TestRendererReceivesSlicedGrid(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).constant("ugrd10m", 3).constant("vgrd10m", 4)
	render := &fakeRenderer{}
	w := NewWind(readyHandle(t, domain.FamilyAtmospheric, r), render)

	res, err := w.Process(context.Background(), Request{Box: testBox})
	require.NoError(t, err)
	assert.Equal(t, 1, render.calls)
	assert.Equal(t, []byte("png:wind"), res.Image)
}

func TestEmptyRegionPropagates(t *testing.T) {
	r := newFakeReader(domain.FamilyAtmospheric).constant("ugrd10m", 3).constant("vgrd10m", 4)
	w := NewWind(readyHandle(t, domain.FamilyAtmospheric, r), nil)

	box := domain.BoundingBox{MinLat: 60, MaxLat: 70, MinLon: -72.5, MaxLon: -67.5}
	_, err := w.Process(context.Background(), Request{Box: box})
	var empty *grid.EmptyRegionError
	assert.ErrorAs(t, err, &empty)
}
