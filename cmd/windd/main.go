package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/adapter/gazetteer"
	kafkaadapter "github.com/celtiberi/wind-service-2/internal/adapter/kafka"
	"github.com/celtiberi/wind-service-2/internal/adapter/marinetext"
	"github.com/celtiberi/wind-service-2/internal/adapter/source"
	"github.com/celtiberi/wind-service-2/internal/api"
	"github.com/celtiberi/wind-service-2/internal/config"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/poller"
	"github.com/celtiberi/wind-service-2/internal/processor"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// readiness reports ready once every tracked family has a usable dataset.
type readiness struct {
	handles map[domain.Family]*dataset.Handle
}

func (r *readiness) CheckReadiness(_ context.Context) error {
	for family, h := range r.handles {
		if !h.Ready() {
			return fmt.Errorf("no dataset for family %s yet", family)
		}
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog := observability.NewLogger(cfg.LogFile, parseLevel(cfg.LogLevel))
	defer closeLog() //nolint:errcheck // best-effort flush on exit
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	reg := registry.Open(cfg.RegistryPath)

	src := source.New(cfg.SourceBaseURL, nil, source.BackoffConfig{MaxRetries: 3}, logger)
	p := poller.New(src, reg, poller.Config{
		DataDir:      cfg.DataDir,
		StatePath:    cfg.StatePath,
		Families:     cfg.Families,
		Interval:     cfg.PollInterval,
		CycleCeiling: cfg.CycleCeiling,
	}, clock, logger, metrics)

	// Dataset announcements are feature-flagged on broker configuration.
	var announcer *kafkaadapter.Announcer
	if cfg.AnnouncerEnabled {
		announcer = kafkaadapter.NewAnnouncer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		p.SetAnnouncer(announcer)
		logger.Info("dataset announcements enabled", "topic", cfg.KafkaTopic)
	}

	handles := make(map[domain.Family]*dataset.Handle, len(cfg.Families))
	for _, f := range cfg.Families {
		handles[f] = dataset.NewHandle(f, reg, dataset.NetCDFOpener(f), logger, metrics)
	}

	var procs []processor.Processor
	if h, ok := handles[domain.FamilyAtmospheric]; ok {
		procs = append(procs, processor.NewWind(h, nil), processor.NewHazard(h, nil))
	}
	if h, ok := handles[domain.FamilyWave]; ok {
		procs = append(procs, processor.NewWave(h, nil))
	}

	apiKey := ""
	if cfg.GeocoderEnabled {
		apiKey = cfg.GeocoderAPIKey
		logger.Info("geocoding fallback enabled")
	}
	resolver := gazetteer.New(apiKey, cfg.GazetteerCacheSize, logger, metrics)

	text := marinetext.New(cfg.ForecastTextBaseURL, nil, cfg.ForecastTextTTL, clock, logger, metrics)

	handler := api.NewHandler(procs, resolver, text, logger, metrics)
	srv := api.NewServer(cfg.HTTPAddr, handler, &readiness{handles: handles}, cfg.CORSOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	for _, h := range handles {
		go h.Run(ctx)
	}

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if announcer != nil {
		if err := announcer.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
