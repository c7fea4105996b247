// Package gazetteer resolves place names to bounding boxes: a built-in
// table of marine regions first, then an external geocoder fallback.
package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
)

// ErrNameNotFound indicates neither the region table nor the geocoder
// knows the name.
var ErrNameNotFound = errors.New("location name not found")

// Small named areas get padded so a request over them covers enough
// grid cells to be useful.
const (
	smallAreaSpan   = 5.0
	smallAreaBuffer = 3.0
)

// geocodeFunc resolves a free-form name to a point. Injectable for
// tests; the default wraps the Google geocoding client.
type geocodeFunc func(name string) (lat, lon float64, err error)

// Gazetteer resolves names with a bounded LRU cache in front of the
// lookups.
type Gazetteer struct {
	regions map[string]domain.BoundingBox
	geocode geocodeFunc
	cache   *lruCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Gazetteer. apiKey enables the geocoder fallback; with
// an empty key only the built-in region table is consulted.
func New(apiKey string, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Gazetteer {
	var geocode geocodeFunc
	if apiKey != "" {
		geocoder.ApiKey = apiKey
		geocode = func(name string) (float64, float64, error) {
			loc, err := geocoder.Geocoding(geocoder.Address{City: name})
			if err != nil {
				return 0, 0, err
			}
			return loc.Latitude, loc.Longitude, nil
		}
	}
	return newWith(geocode, cacheSize, logger, metrics)
}

func newWith(geocode geocodeFunc, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Gazetteer {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	return &Gazetteer{
		regions: marineRegions,
		geocode: geocode,
		cache:   newLRUCache(cacheSize),
		logger:  logger.With("component", "gazetteer"),
		metrics: metrics,
	}
}

// Resolve returns the bounding box for a named location. Small areas
// are buffered; results are cached.
func (g *Gazetteer) Resolve(_ context.Context, name string) (domain.BoundingBox, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return domain.BoundingBox{}, fmt.Errorf("%w: empty name", ErrNameNotFound)
	}

	if box, ok := g.cache.get(key); ok {
		g.metrics.GazetteerCache.WithLabelValues("hit").Inc()
		return box, nil
	}
	g.metrics.GazetteerCache.WithLabelValues("miss").Inc()

	if box, ok := g.regions[key]; ok {
		box = bufferSmallArea(box)
		g.cache.put(key, box)
		return box, nil
	}

	if g.geocode == nil {
		return domain.BoundingBox{}, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	lat, lon, err := g.geocode(name)
	if err != nil {
		g.logger.Warn("geocoder fallback failed", "name", name, "error", err)
		return domain.BoundingBox{}, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	box := bufferSmallArea(domain.BoxAround(lat, lon, 1))
	g.cache.put(key, box)
	return box, nil
}

// bufferSmallArea pads boxes whose span is under smallAreaSpan degrees
// on either axis.
func bufferSmallArea(box domain.BoundingBox) domain.BoundingBox {
	if box.MaxLat-box.MinLat < smallAreaSpan || box.MaxLon-box.MinLon < smallAreaSpan {
		return box.Buffered(smallAreaBuffer)
	}
	return box
}
