package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

func testRecord(fam domain.Family, path string, dl time.Time) domain.PublishedDataset {
	return domain.PublishedDataset{
		Family:       fam,
		Path:         path,
		DownloadTime: dl,
		Metadata: domain.FamilyMetadata{
			Cycle:        domain.ForecastCycle{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Hour: 12},
			Resolution:   "0p25",
			ForecastHour: "f000",
		},
	}
}

func TestPublishRoundTrip(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "registry.txt"))

	dl := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/atmos/a.nc", dl)))
	require.NoError(t, r.Publish(testRecord(domain.FamilyWave, "/data/wave/w.nc", dl.Add(time.Minute))))

	all, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/data/atmos/a.nc", all[domain.FamilyAtmospheric].Path)
	assert.Equal(t, dl, all[domain.FamilyAtmospheric].DownloadTime)
	assert.Equal(t, 12, all[domain.FamilyWave].Metadata.Cycle.Hour)
	assert.Equal(t, "0p25", all[domain.FamilyWave].Metadata.Resolution)
}

func TestReadAbsentFamily(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "registry.txt"))

	_, ok, err := r.Read(domain.FamilyWave)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Publish(testRecord(domain.FamilyWave, "/data/wave/w.nc", time.Now().UTC())))
	d, ok, err := r.Read(domain.FamilyWave)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/data/wave/w.nc", d.Path)
}

func TestPublishOverwritesSameFamily(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "registry.txt"))

	dl := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/atmos/old.nc", dl)))
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/atmos/new.nc", dl.Add(6*time.Hour))))

	all, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "/data/atmos/new.nc", all[domain.FamilyAtmospheric].Path)
}

func TestWatchCoalesces(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "registry.txt"))
	ch := r.Watch()

	dl := time.Now().UTC()
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/a1.nc", dl)))
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/a2.nc", dl.Add(time.Second))))
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/a3.nc", dl.Add(2*time.Second))))

	// Three publishes with no receiver collapse into one pending signal.
	select {
	case <-ch:
	default:
		t.Fatal("expected a pending change signal")
	}
	select {
	case <-ch:
		t.Fatal("expected signals to coalesce")
	default:
	}
}

func TestReadersNeverSeePartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.txt")
	r := Open(path)
	require.NoError(t, r.Publish(testRecord(domain.FamilyAtmospheric, "/data/a.nc", time.Now().UTC())))

	// A crashed writer leaves only a temp file behind; the record read
	// by a new process still reflects the prior complete publish.
	require.NoError(t, os.WriteFile(path+".tmp-crash", []byte("atmospheric.path = /data/torn"), 0o644))

	all, err := Open(path).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "/data/a.nc", all[domain.FamilyAtmospheric].Path)
}

func TestIgnoresCommentsAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.txt")
	content := "# managed by the cycle poller\n" +
		"\n" +
		"garbage line\n" +
		"atmospheric.path = /data/a.nc\n" +
		"atmospheric.download_time = 2025-01-02T15:04:05Z\n" +
		"atmospheric.cycle = gfs.20250102/06\n" +
		"atmospheric.resolution = 0p25\n" +
		"atmospheric.forecast_hour = f000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	all, err := Open(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 6, all[domain.FamilyAtmospheric].Metadata.Cycle.Hour)
}
