package dataset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/observability"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// held is one open reader plus its reference count. A retired reader is
// closed as soon as the last lease releases it.
type held struct {
	reader  FieldReader
	meta    domain.PublishedDataset
	refs    int
	retired bool
}

// Handle keeps one family's current dataset open and swaps to a newer
// file whenever the registry publishes one. Requests in flight keep
// reading the reader they leased; the old reader is closed only after
// the last lease is released.
type Handle struct {
	family  domain.Family
	reg     *registry.Registry
	open    Opener
	logger  *slog.Logger
	metrics *observability.Metrics

	mu  sync.Mutex
	cur *held
}

// NewHandle creates a handle for one family. Call Run to start watching
// the registry; until the first successful open, Acquire returns
// domain.ErrNotReady.
func NewHandle(family domain.Family, reg *registry.Registry, open Opener, logger *slog.Logger, metrics *observability.Metrics) *Handle {
	return &Handle{
		family:  family,
		reg:     reg,
		open:    open,
		logger:  logger.With("component", "dataset", "family", family),
		metrics: metrics,
	}
}

// Run reloads on every registry change until the context is cancelled,
// then closes the current reader once it has no leases.
func (h *Handle) Run(ctx context.Context) {
	ch := h.reg.Watch()
	h.Reload()
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case <-ch:
			h.Reload()
		}
	}
}

// Ready reports whether a reader is currently open.
func (h *Handle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur != nil
}

// Current returns the provenance of the open dataset, if any.
func (h *Handle) Current() (domain.PublishedDataset, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == nil {
		return domain.PublishedDataset{}, false
	}
	return h.cur.meta, true
}

// Lease is a request's reference to one dataset snapshot. The reader
// stays valid until Release, regardless of swaps in the meantime.
type Lease struct {
	h    *Handle
	held *held
	once sync.Once
}

// Reader returns the leased file reader.
func (l *Lease) Reader() FieldReader { return l.held.reader }

// Dataset returns the provenance record of the leased file.
func (l *Lease) Dataset() domain.PublishedDataset { return l.held.meta }

// Release returns the lease. Safe to call more than once.
func (l *Lease) Release() {
	l.once.Do(func() { l.h.release(l.held) })
}

// Acquire leases the current reader, or returns domain.ErrNotReady if
// no dataset has been opened yet.
func (h *Handle) Acquire() (*Lease, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cur == nil {
		return nil, domain.ErrNotReady
	}
	h.cur.refs++
	return &Lease{h: h, held: h.cur}, nil
}

func (h *Handle) release(hd *held) {
	h.mu.Lock()
	hd.refs--
	closeNow := hd.retired && hd.refs == 0
	h.mu.Unlock()
	if closeNow {
		h.closeReader(hd)
	}
}

// Reload re-reads the registry and swaps to the published file if it is
// new. The new file is opened before the old reader is retired; if the
// open fails the old reader keeps serving.
func (h *Handle) Reload() {
	rec, ok, err := h.reg.Read(h.family)
	if err != nil {
		h.logger.Error("registry read failed", "error", err)
		return
	}
	if !ok {
		return
	}

	h.mu.Lock()
	if h.cur != nil && !rec.DownloadTime.After(h.cur.meta.DownloadTime) {
		// Ignore same-file and out-of-order publishes; the handle must
		// never regress to an older download. Path equality alone is
		// not a skip: file names repeat across days, so a newer
		// download at the same path must be reopened.
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	reader, err := h.open(rec.Path)
	if err != nil {
		h.metrics.DatasetSwaps.WithLabelValues(string(h.family), "error").Inc()
		h.logger.Error("failed to open published dataset, keeping previous",
			"path", rec.Path, "error", err)
		return
	}

	h.mu.Lock()
	old := h.cur
	h.cur = &held{reader: reader, meta: rec}
	var closeOld bool
	if old != nil {
		old.retired = true
		closeOld = old.refs == 0
	}
	h.mu.Unlock()

	h.metrics.DatasetSwaps.WithLabelValues(string(h.family), "success").Inc()
	h.logger.Info("dataset swapped", "path", rec.Path, "cycle", rec.Metadata.Cycle)
	if closeOld {
		h.closeReader(old)
	}
}

func (h *Handle) shutdown() {
	h.mu.Lock()
	cur := h.cur
	h.cur = nil
	var closeNow bool
	if cur != nil {
		cur.retired = true
		closeNow = cur.refs == 0
	}
	h.mu.Unlock()
	if closeNow {
		h.closeReader(cur)
	}
}

func (h *Handle) closeReader(hd *held) {
	if err := hd.reader.Close(); err != nil {
		h.logger.Warn("close dataset failed", "path", hd.meta.Path, "error", err)
	}
}
