// Package poller runs the background loop that discovers new forecast
// cycles upstream, downloads each family's analysis file, and publishes
// completed downloads to the dataset registry.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/celtiberi/wind-service-2/internal/adapter/source"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// Announcer broadcasts a successful publish to interested consumers.
// Optional; announcement failures never affect the poll loop.
type Announcer interface {
	Announce(ctx context.Context, d domain.PublishedDataset) error
}

// Source lists and fetches the upstream forecast tree.
type Source interface {
	ListDates(ctx context.Context) ([]time.Time, error)
	ListCycles(ctx context.Context, date time.Time) ([]int, error)
	ListFiles(ctx context.Context, family domain.Family, cycle domain.ForecastCycle) ([]string, error)
	Download(ctx context.Context, family domain.Family, cycle domain.ForecastCycle, destDir string) (string, error)
}

// Config carries the poller's tunables.
type Config struct {
	// DataDir is the root for downloaded files; each family gets a
	// subdirectory named after it.
	DataDir string
	// StatePath is the poller's persisted bookkeeping file.
	StatePath string
	// Families to track each cycle.
	Families []domain.Family
	// Interval between discovery iterations.
	Interval time.Duration
	// CycleCeiling bounds how long an incomplete cycle is waited on
	// before the shortfall is logged.
	CycleCeiling time.Duration
}

// Poller is the single writer of both the state file and the registry.
type Poller struct {
	source  Source
	reg     *registry.Registry
	cfg     Config
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	announcer Announcer
	state     *State
}

// New creates a Poller. The clock is injectable for tests.
func New(src Source, reg *registry.Registry, cfg Config, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.CycleCeiling <= 0 {
		cfg.CycleCeiling = 48 * time.Hour
	}
	return &Poller{
		source:  src,
		reg:     reg,
		cfg:     cfg,
		clock:   clock,
		logger:  logger.With("component", "poller"),
		metrics: metrics,
	}
}

// SetAnnouncer wires an optional publish announcer. Must be called
// before Run.
func (p *Poller) SetAnnouncer(a Announcer) { p.announcer = a }

// Run executes the discovery loop until the context is cancelled.
// Transport errors are logged and retried on the next interval; only
// local-resource failures (state or registry writes) are fatal, and the
// loop persists a final state before returning them.
func (p *Poller) Run(ctx context.Context) error {
	p.state = loadState(p.cfg.StatePath)
	if p.state.Cycle != nil {
		p.logger.Info("resuming from persisted state",
			"cycle", p.state.Cycle, "downloaded", len(p.state.Downloaded))
	} else {
		p.logger.Info("poller started", "interval", p.cfg.Interval)
	}
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	for {
		wait, err := p.iterate(ctx)
		if err != nil {
			p.logger.Error("poller stopping on local failure", "error", err)
			p.persistFinal()
			return err
		}
		if !p.sleep(ctx, wait) {
			p.logger.Info("poller stopping", "reason", ctx.Err())
			p.persistFinal()
			return nil
		}
	}
}

// iterate runs one pass of the state machine and returns how long to
// sleep before the next one.
func (p *Poller) iterate(ctx context.Context) (time.Duration, error) {
	p.metrics.PollIterations.Inc()

	cycle, ok, err := p.discover(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return p.cfg.Interval, nil
	}

	wasComplete := p.state.complete(p.cfg.Families)
	for _, fam := range p.cfg.Families {
		if p.state.Downloaded[fam] != "" {
			continue
		}
		if err := p.fetchFamily(ctx, fam, cycle); err != nil {
			return 0, err
		}
	}

	if p.state.complete(p.cfg.Families) {
		if !wasComplete {
			p.metrics.CyclesCompleted.Inc()
			p.logger.Info("cycle complete", "cycle", cycle)
		}
		if cycle.IsLastOfDay() {
			// Nothing new appears upstream until the next day's first
			// cycle; sleep through the gap instead of polling it.
			wake := cycle.Date.AddDate(0, 0, 1)
			if wait := wake.Sub(p.clock.Now()); wait > p.cfg.Interval {
				p.logger.Info("last cycle of day complete, sleeping until next day", "wake", wake)
				return wait, nil
			}
		}
		return p.cfg.Interval, nil
	}

	if !p.state.CycleStarted.IsZero() && p.clock.Since(p.state.CycleStarted) > p.cfg.CycleCeiling {
		p.logger.Warn("cycle exceeded completion ceiling, continuing normal polling",
			"cycle", cycle, "ceiling", p.cfg.CycleCeiling,
			"missing", p.state.missing(p.cfg.Families))
		// Re-arm so the shortfall is logged once per ceiling window,
		// not every interval.
		p.state.CycleStarted = p.clock.Now()
	}
	return p.cfg.Interval, nil
}

// discover resolves the latest upstream (date, cycle) pair and rolls
// the state forward when a genuinely newer cycle appears. Remembered
// cycles never regress. ok=false means a transport failure left nothing
// to work on this round.
func (p *Poller) discover(ctx context.Context) (domain.ForecastCycle, bool, error) {
	dates, err := p.source.ListDates(ctx)
	if err != nil || len(dates) == 0 {
		p.logRetryable("list dates", err)
		return domain.ForecastCycle{}, false, nil
	}
	latestDate := dates[len(dates)-1]

	hours, err := p.source.ListCycles(ctx, latestDate)
	if err != nil || len(hours) == 0 {
		p.logRetryable("list cycles", err)
		// The date directory exists while the cycle listing fails; if
		// a cycle is already in progress keep working it.
		if p.state.Cycle != nil {
			return *p.state.Cycle, true, nil
		}
		return domain.ForecastCycle{}, false, nil
	}
	newCycle := domain.ForecastCycle{Date: latestDate, Hour: hours[len(hours)-1]}

	if p.state.Cycle == nil || p.state.Cycle.Before(newCycle) {
		p.logger.Info("new forecast cycle discovered", "cycle", newCycle)
		p.state.setCycle(newCycle, p.clock.Now())
		p.purgeStaleFiles(newCycle)
		if err := p.save(); err != nil {
			return domain.ForecastCycle{}, false, err
		}
	}
	return *p.state.Cycle, true, nil
}

// fetchFamily checks one family's listing for the target file and
// downloads and publishes it when present. Transport failures and
// not-yet-published responses are left for the next iteration; the
// returned error is non-nil only for local-resource failures.
func (p *Poller) fetchFamily(ctx context.Context, fam domain.Family, cycle domain.ForecastCycle) error {
	files, err := p.source.ListFiles(ctx, fam, cycle)
	if errors.Is(err, source.ErrNotPublished) {
		p.metrics.Downloads.WithLabelValues(string(fam), "not_published").Inc()
		p.logger.Debug("family not published yet", "family", fam, "cycle", cycle)
		return nil
	}
	if err != nil {
		p.logRetryable("list family files", err, "family", fam)
		return nil
	}

	target := fam.FileName(cycle)
	if !slices.Contains(files, target) {
		p.logger.Debug("target file not listed yet", "family", fam, "file", target)
		return nil
	}

	p.state.Downloading = true
	if err := p.save(); err != nil {
		return err
	}

	start := p.clock.Now()
	path, err := p.source.Download(ctx, fam, cycle, filepath.Join(p.cfg.DataDir, string(fam)))
	p.state.Downloading = false
	if err != nil {
		p.metrics.Downloads.WithLabelValues(string(fam), "error").Inc()
		p.logRetryable("download", err, "family", fam, "file", target)
		return p.save()
	}
	p.metrics.Downloads.WithLabelValues(string(fam), "success").Inc()
	p.metrics.DownloadDuration.WithLabelValues(string(fam)).Observe(p.clock.Since(start).Seconds())

	md, err := domain.ParseFileMetadata(target, cycle.Date)
	if err != nil {
		// The name was generated by us, so this indicates a naming bug.
		return fmt.Errorf("parse metadata for %s: %w", target, err)
	}

	// Write-then-publish: the file is fully on disk before the record
	// referencing it exists. Only after a successful publish is the
	// file marked downloaded.
	rec := domain.PublishedDataset{
		Family:       fam,
		Path:         path,
		DownloadTime: p.clock.Now(),
		Metadata:     md,
	}
	if err := p.reg.Publish(rec); err != nil {
		return fmt.Errorf("publish %s: %w", target, err)
	}
	if p.announcer != nil {
		if err := p.announcer.Announce(ctx, rec); err != nil {
			p.logger.Warn("publish announcement failed", "family", fam, "error", err)
		}
	}
	p.state.markDownloaded(fam, target)
	return p.save()
}

// purgeStaleFiles removes previously downloaded files that do not
// belong to the new cycle.
func (p *Poller) purgeStaleFiles(cycle domain.ForecastCycle) {
	for _, fam := range p.cfg.Families {
		dir := filepath.Join(p.cfg.DataDir, string(fam))
		keep := fam.FileName(cycle)
		entries, err := filepath.Glob(filepath.Join(dir, fam.FilePrefix()+"*"))
		if err != nil {
			continue
		}
		for _, path := range entries {
			if filepath.Base(path) == keep {
				continue
			}
			if err := os.Remove(path); err != nil {
				p.logger.Warn("failed to remove stale file", "path", path, "error", err)
			} else {
				p.logger.Debug("removed stale file", "path", path)
			}
		}
	}
}

func (p *Poller) save() error {
	return saveState(p.cfg.StatePath, p.state, p.clock.Now())
}

func (p *Poller) persistFinal() {
	if err := p.save(); err != nil {
		p.logger.Error("final state persist failed", "error", err)
	}
}

func (p *Poller) logRetryable(op string, err error, args ...any) {
	if err == nil {
		err = errors.New("empty listing")
	}
	p.logger.Warn(op+" failed, will retry", append([]any{"error", err}, args...)...)
}

// sleep blocks for d on the injected clock, returning false if the
// context is cancelled first.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := p.clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
