//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/adapter/source"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/poller"
	"github.com/celtiberi/wind-service-2/internal/processor"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// stubReader serves a tiny fixed grid so the full chain can run without
// real NetCDF fixtures.
type stubReader struct{}

func (stubReader) Coordinates() ([][]float64, [][]float64, error) {
	lats := make([][]float64, 5)
	lons := make([][]float64, 5)
	for i := range lats {
		lats[i] = make([]float64, 5)
		lons[i] = make([]float64, 5)
		for j := range lats[i] {
			lats[i][j] = 40 + 0.25*float64(i)
			lons[i][j] = 289 + 0.25*float64(j)
		}
	}
	return lats, lons, nil
}

func (stubReader) ReadField(name string) ([][]float64, error) {
	v := map[string]float64{"ugrd10m": 3, "vgrd10m": 4}[name]
	field := make([][]float64, 5)
	for i := range field {
		field[i] = make([]float64, 5)
		for j := range field[i] {
			field[i][j] = v
		}
	}
	return field, nil
}

func (stubReader) Close() error { return nil }

func listing(names ...string) string {
	page := "<html><body>"
	for _, n := range names {
		page += fmt.Sprintf(`<a href="%s">%s</a>`, n, n)
	}
	return page + "</body></html>"
}

// TestAcquisitionEndToEnd drives the whole acquisition chain against a
// fake upstream: listing discovery, download, registry publish, handle
// swap, and finally a product computation over the new dataset.
func TestAcquisitionEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, listing("gfs.20250314/"))
		case "/gfs.20250314/":
			fmt.Fprint(w, listing("12/"))
		case "/gfs.20250314/12/atmos/":
			fmt.Fprint(w, listing("gfs.t12z.0p25.f000.nc"))
		case "/gfs.20250314/12/atmos/gfs.t12z.0p25.f000.nc":
			w.Write([]byte("gridded-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer upstream.Close()

	dir := t.TempDir()
	logger := observability.NopLogger()
	metrics := observability.NewMetricsForTesting()
	reg := registry.Open(filepath.Join(dir, "registry.properties"))

	src := source.New(upstream.URL, upstream.Client(), source.BackoffConfig{MaxRetries: 1}, logger)
	p := poller.New(src, reg, poller.Config{
		DataDir:   filepath.Join(dir, "data"),
		StatePath: filepath.Join(dir, "poller.state"),
		Families:  []domain.Family{domain.FamilyAtmospheric},
		Interval:  10 * time.Millisecond,
	}, clockwork.NewRealClock(), logger, metrics)

	opener := func(path string) (dataset.FieldReader, error) { return stubReader{}, nil }
	handle := dataset.NewHandle(domain.FamilyAtmospheric, reg, opener, logger, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handle.Run(ctx)

	pollerDone := make(chan error, 1)
	go func() { pollerDone <- p.Run(ctx) }()

	require.Eventually(t, handle.Ready, 5*time.Second, 10*time.Millisecond,
		"handle should become ready once the cycle is downloaded and published")

	current, ok := handle.Current()
	require.True(t, ok)
	assert.Equal(t, domain.ForecastCycle{Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Hour: 12}, current.Metadata.Cycle)
	assert.FileExists(t, current.Path)

	wind := processor.NewWind(handle, nil)
	result, err := wind.Process(ctx, processor.Request{Box: domain.BoundingBox{
		MinLat: 40, MaxLat: 41, MinLon: -71, MaxLon: -70,
	}})
	require.NoError(t, err)
	assert.InDelta(t, 9.72, result.Summary["max_wind_speed_knots"], 0.01)
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), result.ValidTime)

	cancel()
	select {
	case <-pollerDone:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}
