package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CycleHours lists the GFS model run hours, in publication order.
var CycleHours = []int{0, 6, 12, 18}

// LastCycleHour is the final model run of a calendar day.
const LastCycleHour = 18

// ForecastCycle identifies one model run: an issue date (UTC, truncated
// to midnight) and one of the hours in CycleHours.
type ForecastCycle struct {
	Date time.Time
	Hour int
}

// Label renders the cycle hour the way it appears in product file
// names, e.g. "t06z".
func (c ForecastCycle) Label() string {
	return fmt.Sprintf("t%02dz", c.Hour)
}

// DirName renders the two-digit cycle directory name, e.g. "06".
func (c ForecastCycle) DirName() string {
	return fmt.Sprintf("%02d", c.Hour)
}

// DateDir renders the issue-date directory name, e.g. "gfs.20250102".
func (c ForecastCycle) DateDir() string {
	return "gfs." + c.Date.Format("20060102")
}

// Time returns the cycle's nominal issue instant in UTC.
func (c ForecastCycle) Time() time.Time {
	return time.Date(c.Date.Year(), c.Date.Month(), c.Date.Day(), c.Hour, 0, 0, 0, time.UTC)
}

// Before reports whether c was issued strictly earlier than other.
func (c ForecastCycle) Before(other ForecastCycle) bool {
	return c.Time().Before(other.Time())
}

// Next returns the cycle that follows c: the next hour in CycleHours, or
// 00Z of the following day after the last cycle.
func (c ForecastCycle) Next() ForecastCycle {
	for _, h := range CycleHours {
		if h > c.Hour {
			return ForecastCycle{Date: c.Date, Hour: h}
		}
	}
	return ForecastCycle{Date: c.Date.AddDate(0, 0, 1), Hour: CycleHours[0]}
}

// IsLastOfDay reports whether c is the final cycle of its issue date.
func (c ForecastCycle) IsLastOfDay() bool {
	return c.Hour == LastCycleHour
}

func (c ForecastCycle) String() string {
	return c.DateDir() + "/" + c.DirName()
}

// ParseDateDir parses an issue-date directory name such as
// "gfs.20250102". A trailing slash from an HTML listing is tolerated.
func ParseDateDir(name string) (time.Time, error) {
	name = strings.TrimSuffix(name, "/")
	rest, ok := strings.CutPrefix(name, "gfs.")
	if !ok {
		return time.Time{}, fmt.Errorf("not a date directory: %q", name)
	}
	t, err := time.Parse("20060102", rest)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date directory %q: %w", name, err)
	}
	return t, nil
}

// ParseCycleDir parses a cycle directory name such as "06", accepting
// only the hours in CycleHours.
func ParseCycleDir(name string) (int, error) {
	name = strings.TrimSuffix(name, "/")
	h, err := strconv.Atoi(name)
	if err != nil {
		return 0, fmt.Errorf("not a cycle directory: %q", name)
	}
	for _, want := range CycleHours {
		if h == want {
			return h, nil
		}
	}
	return 0, fmt.Errorf("not a model cycle hour: %d", h)
}
