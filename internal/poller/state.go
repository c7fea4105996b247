package poller

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// State is the poller's persisted bookkeeping: the cycle it is working
// on and which families' files it has already downloaded for it. It is
// rewritten after every transition so a restart resumes instead of
// re-downloading.
//
// Invariant: Downloaded only ever names files belonging to Cycle;
// entries from an older cycle are purged on rollover.
type State struct {
	Cycle        *domain.ForecastCycle
	Downloaded   map[domain.Family]string
	Downloading  bool
	CycleStarted time.Time
	LastUpdate   time.Time
}

func newState() *State {
	return &State{Downloaded: make(map[domain.Family]string)}
}

// setCycle moves the state to a new cycle, dropping every downloaded
// entry from the previous one.
func (s *State) setCycle(c domain.ForecastCycle, now time.Time) {
	s.Cycle = &c
	s.Downloaded = make(map[domain.Family]string)
	s.Downloading = false
	s.CycleStarted = now
}

// markDownloaded records a completed-and-published file for the family.
func (s *State) markDownloaded(f domain.Family, name string) {
	s.Downloaded[f] = name
}

// complete reports whether every listed family has its file.
func (s *State) complete(families []domain.Family) bool {
	if s.Cycle == nil {
		return false
	}
	for _, f := range families {
		if s.Downloaded[f] == "" {
			return false
		}
	}
	return true
}

// missing lists the families still waiting for a file.
func (s *State) missing(families []domain.Family) []domain.Family {
	var out []domain.Family
	for _, f := range families {
		if s.Downloaded[f] == "" {
			out = append(out, f)
		}
	}
	return out
}

// saveState rewrites the state file wholesale and atomically.
func saveState(path string, s *State, now time.Time) error {
	s.LastUpdate = now

	var sb strings.Builder
	if s.Cycle != nil {
		fmt.Fprintf(&sb, "current_cycle = %s\n", s.Cycle)
		fmt.Fprintf(&sb, "cycle_started = %s\n", s.CycleStarted.UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(&sb, "is_downloading = %t\n", s.Downloading)
	fmt.Fprintf(&sb, "last_update = %s\n", s.LastUpdate.UTC().Format(time.RFC3339Nano))

	fams := make([]string, 0, len(s.Downloaded))
	for f := range s.Downloaded {
		fams = append(fams, string(f))
	}
	sort.Strings(fams)
	for _, f := range fams {
		fmt.Fprintf(&sb, "downloaded.%s = %s\n", f, s.Downloaded[domain.Family(f)])
	}

	if err := registry.AtomicWriteFile(path, []byte(sb.String())); err != nil {
		return fmt.Errorf("persist poller state: %w", err)
	}
	return nil
}

// loadState reads a previously persisted state. A missing file yields a
// fresh state; a malformed file is treated the same, since re-discovery
// is always safe (resumption is best-effort).
func loadState(path string) *State {
	s := newState()

	f, err := os.Open(path)
	if err != nil {
		return s
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch {
		case key == "current_cycle":
			dateDir, cycleDir, ok := strings.Cut(value, "/")
			if !ok {
				continue
			}
			date, err := domain.ParseDateDir(dateDir)
			if err != nil {
				continue
			}
			hour, err := domain.ParseCycleDir(cycleDir)
			if err != nil {
				continue
			}
			s.Cycle = &domain.ForecastCycle{Date: date, Hour: hour}
		case key == "cycle_started":
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				s.CycleStarted = t
			}
		case key == "is_downloading":
			s.Downloading = value == "true"
		case key == "last_update":
			if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
				s.LastUpdate = t
			}
		case strings.HasPrefix(key, "downloaded."):
			fam, err := domain.ParseFamily(strings.TrimPrefix(key, "downloaded."))
			if err != nil {
				continue
			}
			s.Downloaded[fam] = value
		}
	}

	// Downloaded entries without a cycle cannot satisfy the invariant.
	if s.Cycle == nil {
		s.Downloaded = make(map[domain.Family]string)
	}
	return s
}
