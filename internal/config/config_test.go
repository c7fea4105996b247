package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

const testGeocoderKey = "test-api-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://nomads.ncep.noaa.gov/pub/data/nccf/com/gfs/prod", cfg.SourceBaseURL)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "./data/poller.state", cfg.StatePath)
	assert.Equal(t, "./data/registry.properties", cfg.RegistryPath)
	assert.Equal(t, []domain.Family{domain.FamilyAtmospheric, domain.FamilyWave}, cfg.Families)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, 48*time.Hour, cfg.CycleCeiling)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.AnnouncerEnabled)
	assert.Equal(t, "dataset-updates", cfg.KafkaTopic)
	assert.False(t, cfg.GeocoderEnabled)
	assert.Equal(t, 128, cfg.GazetteerCacheSize)
	assert.Equal(t, time.Hour, cfg.ForecastTextTTL)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/var/log/windd.log")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SOURCE_BASE_URL", "http://localhost:9999/gfs")
	t.Setenv("DATA_DIR", "/srv/wind")
	t.Setenv("FAMILIES", "wave")
	t.Setenv("POLL_INTERVAL", "15s")
	t.Setenv("CYCLE_CEILING", "12h")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-updates")
	t.Setenv("GEOCODER_API_KEY", testGeocoderKey)
	t.Setenv("GAZETTEER_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/windd.log", cfg.LogFile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:9999/gfs", cfg.SourceBaseURL)
	assert.Equal(t, "/srv/wind/poller.state", cfg.StatePath)
	assert.Equal(t, []domain.Family{domain.FamilyWave}, cfg.Families)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, 12*time.Hour, cfg.CycleCeiling)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AnnouncerEnabled)
	assert.Equal(t, "custom-updates", cfg.KafkaTopic)
	assert.True(t, cfg.GeocoderEnabled)
	assert.Equal(t, 500, cfg.GazetteerCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativePollInterval(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLL_INTERVAL")
}

func TestLoad_UnknownFamily(t *testing.T) {
	t.Setenv("FAMILIES", "atmospheric,plasma")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAMILIES")
}

func TestLoad_AnnouncerEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("ANNOUNCER_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_BrokersImplyAnnouncer(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AnnouncerEnabled)
}

func TestLoad_AnnouncerExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("ANNOUNCER_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.AnnouncerEnabled)
}

func TestLoad_GeocoderEnabledWithoutKey(t *testing.T) {
	t.Setenv("GEOCODER_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_API_KEY")
}

func TestLoad_GeocoderKeyImpliesEnabled(t *testing.T) {
	t.Setenv("GEOCODER_API_KEY", testGeocoderKey)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GeocoderEnabled)
}
