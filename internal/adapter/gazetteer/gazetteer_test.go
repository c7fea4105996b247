package gazetteer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
)

func newTestGazetteer(geocode geocodeFunc) *Gazetteer {
	return newWith(geocode, 0, observability.NopLogger(), observability.NewMetricsForTesting())
}

func TestResolveKnownRegion(t *testing.T) {
	g := newTestGazetteer(nil)

	box, err := g.Resolve(context.Background(), "Gulf of Maine")
	require.NoError(t, err)
	require.NoError(t, box.Validate())
	// The raw region spans under 5 degrees of latitude, so it gets the
	// small-area buffer.
	assert.InDelta(t, 42.0-smallAreaBuffer, box.MinLat, 1e-9)
	assert.InDelta(t, -65.5+smallAreaBuffer, box.MaxLon, 1e-9)
}

func TestResolveLargeRegionNotBuffered(t *testing.T) {
	g := newTestGazetteer(nil)

	box, err := g.Resolve(context.Background(), "gulf of mexico")
	require.NoError(t, err)
	assert.InDelta(t, 18.0, box.MinLat, 1e-9)
	assert.InDelta(t, -98.0, box.MinLon, 1e-9)
}

func TestResolveGeocoderFallback(t *testing.T) {
	var calls int
	g := newTestGazetteer(func(name string) (float64, float64, error) {
		calls++
		assert.Equal(t, "Woods Hole", name)
		return 41.52, -70.67, nil
	})

	box, err := g.Resolve(context.Background(), "Woods Hole")
	require.NoError(t, err)
	require.NoError(t, box.Validate())
	// Point, 1 degree box, then small-area buffer.
	assert.InDelta(t, 41.52-4, box.MinLat, 1e-9)
	assert.InDelta(t, -70.67+4, box.MaxLon, 1e-9)
	assert.Equal(t, 1, calls)

	// Second resolve is served from the cache.
	_, err = g.Resolve(context.Background(), "woods hole")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestResolveUnknownName(t *testing.T) {
	g := newTestGazetteer(func(string) (float64, float64, error) {
		return 0, 0, errors.New("ZERO_RESULTS")
	})

	_, err := g.Resolve(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrNameNotFound)

	_, err = g.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNameNotFound)
}

func TestResolveWithoutGeocoder(t *testing.T) {
	g := newTestGazetteer(nil)

	_, err := g.Resolve(context.Background(), "Somewhere Obscure")
	assert.ErrorIs(t, err, ErrNameNotFound)
}

func TestRegionTableEntriesAreValid(t *testing.T) {
	for name, box := range marineRegions {
		assert.NoError(t, box.Validate(), "region %s", name)
	}
}

func TestCacheEviction(t *testing.T) {
	c := newLRUCache(2)
	a := domain.BoundingBox{MinLat: 1, MaxLat: 2, MinLon: 1, MaxLon: 2}
	b := domain.BoundingBox{MinLat: 3, MaxLat: 4, MinLon: 3, MaxLon: 4}
	d := domain.BoundingBox{MinLat: 5, MaxLat: 6, MinLon: 5, MaxLon: 6}

	c.put("a", a)
	c.put("b", b)
	_, ok := c.get("a") // refresh a
	require.True(t, ok)
	c.put("d", d) // evicts b

	_, ok = c.get("b")
	assert.False(t, ok)
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, a, got)
}
