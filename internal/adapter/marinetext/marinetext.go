// Package marinetext serves the official marine zone forecast text for
// a coordinate: zone lookup from a packaged table, then a cached fetch
// of the zone's text product.
package marinetext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
)

// ErrNoZone indicates no marine zone in the table covers the point.
var ErrNoZone = errors.New("no marine forecast zone covers this location")

// DefaultBaseURL is the text product tree for coastal marine zones.
const DefaultBaseURL = "https://tgftp.nws.noaa.gov/data/forecasts/marine/coastal"

// Zone is one forecast zone: its identifier, a human name, and an
// approximate covering box.
type Zone struct {
	ID   string
	Name string
	Box  domain.BoundingBox
}

// Forecast is one zone's current text product.
type Forecast struct {
	ZoneID    string    `json:"zone_id"`
	ZoneName  string    `json:"zone_name"`
	Text      string    `json:"forecast"`
	Retrieved time.Time `json:"retrieved"`
}

type cachedText struct {
	forecast Forecast
	fetched  time.Time
}

// Service looks up zones and fetches their text with a TTL cache. Zone
// text products update a few times a day; re-fetching per request would
// be wasteful.
type Service struct {
	zones   []Zone
	baseURL string
	http    *http.Client
	clock   clockwork.Clock
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics

	mu    sync.Mutex
	cache map[string]cachedText
}

// New creates the service over the built-in zone table.
func New(baseURL string, httpClient *http.Client, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		zones:   coastalZones,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		clock:   clock,
		ttl:     ttl,
		logger:  logger.With("component", "marinetext"),
		metrics: metrics,
		cache:   make(map[string]cachedText),
	}
}

// Forecast returns the zone text covering the point.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) (Forecast, error) {
	zone, ok := s.zoneFor(lat, lon)
	if !ok {
		return Forecast{}, fmt.Errorf("%w: (%.3f, %.3f)", ErrNoZone, lat, lon)
	}

	s.mu.Lock()
	if c, ok := s.cache[zone.ID]; ok && s.clock.Since(c.fetched) < s.ttl {
		s.mu.Unlock()
		s.metrics.ForecastTextCache.WithLabelValues("hit").Inc()
		return c.forecast, nil
	}
	s.mu.Unlock()
	s.metrics.ForecastTextCache.WithLabelValues("miss").Inc()

	text, err := s.fetch(ctx, zone.ID)
	if err != nil {
		return Forecast{}, err
	}
	f := Forecast{
		ZoneID:    zone.ID,
		ZoneName:  zone.Name,
		Text:      text,
		Retrieved: s.clock.Now().UTC(),
	}
	s.mu.Lock()
	s.cache[zone.ID] = cachedText{forecast: f, fetched: s.clock.Now()}
	s.mu.Unlock()
	return f, nil
}

// zoneFor returns the first zone whose box contains the point. The
// table is ordered with the more specific zones first.
func (s *Service) zoneFor(lat, lon float64) (Zone, bool) {
	for _, z := range s.zones {
		if lat >= z.Box.MinLat && lat <= z.Box.MaxLat && lon >= z.Box.MinLon && lon <= z.Box.MaxLon {
			return z, true
		}
	}
	return Zone{}, false
}

// fetch retrieves one zone's text product, e.g.
// <base>/an/anz250.txt for zone ANZ250.
func (s *Service) fetch(ctx context.Context, zoneID string) (string, error) {
	id := strings.ToLower(zoneID)
	url := fmt.Sprintf("%s/%s/%s.txt", s.baseURL, id[:2], id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch forecast text: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch forecast text for %s: status %d", zoneID, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read forecast text: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}
