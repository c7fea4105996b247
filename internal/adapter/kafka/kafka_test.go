package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	downloaded := time.Date(2025, 3, 14, 16, 42, 0, 0, time.UTC)
	ds := domain.PublishedDataset{
		Family:       domain.FamilyWave,
		Path:         "/data/gfswave.t12z.global.0p25.f000.nc",
		DownloadTime: downloaded,
		Metadata: domain.FamilyMetadata{
			Cycle:        domain.ForecastCycle{Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Hour: 12},
			Resolution:   "0p25",
			ForecastHour: "f000",
		},
	}

	msg, err := serializeToMessage(ds)
	require.NoError(t, err)

	assert.Equal(t, []byte(domain.FamilyWave), msg.Key)
	assert.Contains(t, string(msg.Value), `"gfswave.t12z.global.0p25.f000.nc"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, kafkago.Header{Key: "cycle", Value: []byte("t12z")}, msg.Headers[0])
	assert.Equal(t, kafkago.Header{Key: "download_time", Value: []byte("2025-03-14T16:42:00Z")}, msg.Headers[1])
}
