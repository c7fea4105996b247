// Package registry keeps the durable record of the latest published
// dataset per family.
//
// The record is one flat key/value text file, rewritten wholesale and
// atomically on each publish. It has a single writer (the poller) and
// any number of readers; the temp-write-and-rename discipline means a
// reader never observes a half-written record.
package registry

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// Registry records the latest PublishedDataset per family in a text
// file of "family.key = value" lines.
type Registry struct {
	path string

	mu       sync.Mutex
	watchers []chan struct{}
}

// Open returns a registry backed by the given file. The file need not
// exist yet; it is created on first publish.
func Open(path string) *Registry {
	return &Registry{path: path}
}

// Publish overwrites the family's record with d. The caller guarantees
// the file at d.Path is fully written before calling. All watchers are
// notified after the record is durably renamed into place.
func (r *Registry) Publish(d domain.PublishedDataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readLocked()
	if err != nil {
		return err
	}
	records[d.Family] = d

	if err := r.writeLocked(records); err != nil {
		return err
	}
	r.notifyLocked()
	return nil
}

// ReadAll returns the latest record per family. Families never
// published are absent from the map.
func (r *Registry) ReadAll() (map[domain.Family]domain.PublishedDataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked()
}

// Read returns the family's record, or ok=false if never published.
func (r *Registry) Read(f domain.Family) (domain.PublishedDataset, bool, error) {
	all, err := r.ReadAll()
	if err != nil {
		return domain.PublishedDataset{}, false, err
	}
	d, ok := all[f]
	return d, ok, nil
}

// Watch returns a channel that receives a signal after every publish.
// The signal is level-triggered and coalescing: the channel has a one
// element buffer, so a slow receiver sees at least one signal for any
// number of intervening publishes and must re-read the registry to
// learn what changed.
func (r *Registry) Watch() <-chan struct{} {
	ch := make(chan struct{}, 1)
	r.mu.Lock()
	r.watchers = append(r.watchers, ch)
	r.mu.Unlock()
	return ch
}

func (r *Registry) notifyLocked() {
	for _, ch := range r.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (r *Registry) readLocked() (map[domain.Family]domain.PublishedDataset, error) {
	out := make(map[domain.Family]domain.PublishedDataset)

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	fields := make(map[domain.Family]map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		famName, attr, ok := strings.Cut(strings.TrimSpace(key), ".")
		if !ok {
			continue
		}
		fam, err := domain.ParseFamily(famName)
		if err != nil {
			continue
		}
		if fields[fam] == nil {
			fields[fam] = make(map[string]string)
		}
		fields[fam][attr] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	for fam, kv := range fields {
		d, err := recordFromFields(fam, kv)
		if err != nil {
			return nil, fmt.Errorf("registry record for %s: %w", fam, err)
		}
		out[fam] = d
	}
	return out, nil
}

func recordFromFields(fam domain.Family, kv map[string]string) (domain.PublishedDataset, error) {
	d := domain.PublishedDataset{Family: fam, Path: kv["path"]}
	if d.Path == "" {
		return d, fmt.Errorf("missing path")
	}

	dt, err := time.Parse(time.RFC3339Nano, kv["download_time"])
	if err != nil {
		return d, fmt.Errorf("bad download_time: %w", err)
	}
	d.DownloadTime = dt

	dateDir, cycleDir, ok := strings.Cut(kv["cycle"], "/")
	if !ok {
		return d, fmt.Errorf("bad cycle %q", kv["cycle"])
	}
	date, err := domain.ParseDateDir(dateDir)
	if err != nil {
		return d, err
	}
	hour, err := domain.ParseCycleDir(cycleDir)
	if err != nil {
		return d, err
	}
	d.Metadata = domain.FamilyMetadata{
		Cycle:        domain.ForecastCycle{Date: date, Hour: hour},
		Resolution:   kv["resolution"],
		ForecastHour: kv["forecast_hour"],
	}
	return d, nil
}

func (r *Registry) writeLocked(records map[domain.Family]domain.PublishedDataset) error {
	var sb strings.Builder
	fams := make([]string, 0, len(records))
	for fam := range records {
		fams = append(fams, string(fam))
	}
	sort.Strings(fams)
	for _, fam := range fams {
		d := records[domain.Family(fam)]
		fmt.Fprintf(&sb, "%s.path = %s\n", fam, d.Path)
		fmt.Fprintf(&sb, "%s.download_time = %s\n", fam, d.DownloadTime.UTC().Format(time.RFC3339Nano))
		fmt.Fprintf(&sb, "%s.cycle = %s\n", fam, d.Metadata.Cycle)
		fmt.Fprintf(&sb, "%s.resolution = %s\n", fam, d.Metadata.Resolution)
		fmt.Fprintf(&sb, "%s.forecast_hour = %s\n", fam, d.Metadata.ForecastHour)
	}
	return AtomicWriteFile(r.path, []byte(sb.String()))
}

// AtomicWriteFile writes data to a temp file in path's directory, syncs
// it and renames it into place so readers never see a partial file.
// Shared by the registry and the poller's state file.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}
