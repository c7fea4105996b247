package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	CORSOrigins     []string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration

	// Dataset acquisition.
	SourceBaseURL string
	DataDir       string
	StatePath     string
	RegistryPath  string
	Families      []domain.Family
	PollInterval  time.Duration
	CycleCeiling  time.Duration

	// Kafka announcements, disabled unless brokers are configured.
	KafkaBrokers     []string
	KafkaTopic       string
	AnnouncerEnabled bool

	// Geocoding fallback for named areas.
	GeocoderAPIKey     string
	GeocoderEnabled    bool
	GazetteerCacheSize int

	// Zone forecast text.
	ForecastTextBaseURL string
	ForecastTextTTL     time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	pollInterval, err := parseDuration("POLL_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}
	cycleCeiling, err := parseDuration("CYCLE_CEILING", "48h")
	if err != nil {
		return nil, err
	}
	textTTL, err := parseDuration("FORECAST_TEXT_TTL", "1h")
	if err != nil {
		return nil, err
	}

	families, err := parseFamilies(envOrDefault("FAMILIES", "atmospheric,wave"))
	if err != nil {
		return nil, err
	}

	dataDir := envOrDefault("DATA_DIR", "./data")

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))
	announcerEnabled := len(brokers) > 0
	if v := os.Getenv("ANNOUNCER_ENABLED"); v != "" {
		announcerEnabled = v == "true"
	}

	geocoderKey := os.Getenv("GEOCODER_API_KEY")
	geocoderEnabled := geocoderKey != ""
	if v := os.Getenv("GEOCODER_ENABLED"); v != "" {
		geocoderEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		CORSOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		SourceBaseURL: envOrDefault("SOURCE_BASE_URL", "https://nomads.ncep.noaa.gov/pub/data/nccf/com/gfs/prod"),
		DataDir:       dataDir,
		StatePath:     envOrDefault("STATE_PATH", dataDir+"/poller.state"),
		RegistryPath:  envOrDefault("REGISTRY_PATH", dataDir+"/registry.properties"),
		Families:      families,
		PollInterval:  pollInterval,
		CycleCeiling:  cycleCeiling,

		KafkaBrokers:     brokers,
		KafkaTopic:       envOrDefault("KAFKA_TOPIC", "dataset-updates"),
		AnnouncerEnabled: announcerEnabled,

		GeocoderAPIKey:     geocoderKey,
		GeocoderEnabled:    geocoderEnabled,
		GazetteerCacheSize: parseCacheSize(),

		ForecastTextBaseURL: os.Getenv("FORECAST_TEXT_BASE_URL"),
		ForecastTextTTL:     textTTL,
	}

	if cfg.SourceBaseURL == "" {
		return nil, errors.New("SOURCE_BASE_URL is required")
	}
	if len(cfg.Families) == 0 {
		return nil, errors.New("FAMILIES is required")
	}
	if cfg.AnnouncerEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("ANNOUNCER_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.GeocoderEnabled && cfg.GeocoderAPIKey == "" {
		return nil, errors.New("GEOCODER_ENABLED is true but GEOCODER_API_KEY is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFamilies(s string) ([]domain.Family, error) {
	var out []domain.Family
	for _, part := range splitList(s) {
		f, err := domain.ParseFamily(part)
		if err != nil {
			return nil, fmt.Errorf("FAMILIES: %w", err)
		}
		out = append(out, f)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCacheSize() int {
	if s := os.Getenv("GAZETTEER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 128
}
