package domain

import "fmt"

// Family is a category of gridded product with its own directory and
// file naming convention inside a cycle directory.
type Family string

const (
	FamilyAtmospheric Family = "atmospheric"
	FamilyWave        Family = "wave"
)

// Families lists every family the service tracks.
var Families = []Family{FamilyAtmospheric, FamilyWave}

// ParseFamily validates a family name from configuration or a request.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown data family: %q", s)
}

// SubDir returns the family's directory name inside a cycle directory.
func (f Family) SubDir() string {
	switch f {
	case FamilyWave:
		return "wave"
	default:
		return "atmos"
	}
}

// FileName returns the analysis file name for the given cycle.
func (f Family) FileName(c ForecastCycle) string {
	switch f {
	case FamilyWave:
		return fmt.Sprintf("gfswave.%s.global.0p25.f000.nc", c.Label())
	default:
		return fmt.Sprintf("gfs.%s.0p25.f000.nc", c.Label())
	}
}

// FilePrefix returns the prefix shared by every file the family ever
// downloads, used when purging stale local copies.
func (f Family) FilePrefix() string {
	switch f {
	case FamilyWave:
		return "gfswave."
	default:
		return "gfs."
	}
}

// RemotePath returns the path of the family's analysis file for a cycle,
// relative to the source root, e.g.
// "gfs.20250102/06/atmos/gfs.t06z.0p25.f000.nc".
func (f Family) RemotePath(c ForecastCycle) string {
	return c.DateDir() + "/" + c.DirName() + "/" + f.SubDir() + "/" + f.FileName(c)
}
