package domain

import (
	"fmt"
	"strings"
	"time"
)

// FamilyMetadata describes a downloaded file: which model run produced
// it and the labels parsed from its name.
type FamilyMetadata struct {
	Cycle        ForecastCycle
	Resolution   string
	ForecastHour string
}

// PublishedDataset is what the poller records in the registry when a
// family's file for a cycle has been fully downloaded: where the file
// landed, when, and what it contains.
type PublishedDataset struct {
	Family       Family
	Path         string
	DownloadTime time.Time
	Metadata     FamilyMetadata
}

// ValidTime is the instant the analysis data is valid for, which for a
// forecast-hour-0 product is the cycle issue time itself.
func (d PublishedDataset) ValidTime() time.Time {
	return d.Metadata.Cycle.Time()
}

// ParseFileMetadata recovers a file's metadata from its name and the
// issue date of the directory it was listed under. Both family naming
// schemes carry the same three tokens of interest: the cycle label, a
// resolution label and a forecast-hour label, e.g.
// "gfs.t12z.0p25.f000.nc" or "gfswave.t12z.global.0p25.f000.nc".
func ParseFileMetadata(name string, issueDate time.Time) (FamilyMetadata, error) {
	var md FamilyMetadata
	var haveCycle bool
	base := strings.TrimSuffix(name, ".nc")
	for _, tok := range strings.Split(base, ".") {
		switch {
		case len(tok) == 4 && tok[0] == 't' && tok[3] == 'z':
			var h int
			if _, err := fmt.Sscanf(tok, "t%02dz", &h); err != nil {
				return md, fmt.Errorf("bad cycle label %q in %q", tok, name)
			}
			md.Cycle = ForecastCycle{Date: issueDate, Hour: h}
			haveCycle = true
		case strings.HasPrefix(tok, "0p"):
			md.Resolution = tok
		case len(tok) > 1 && tok[0] == 'f' && isDigits(tok[1:]):
			md.ForecastHour = tok
		}
	}
	if !haveCycle {
		return md, fmt.Errorf("no cycle label in file name %q", name)
	}
	if md.Resolution == "" || md.ForecastHour == "" {
		return md, fmt.Errorf("file name %q missing resolution or forecast-hour label", name)
	}
	return md, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
