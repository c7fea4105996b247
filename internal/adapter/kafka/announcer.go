// Package kafka publishes dataset-update announcements so downstream
// consumers can react to new forecast cycles without polling the
// registry themselves.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/celtiberi/wind-service-2/internal/domain"
)

// Announcer produces one message per published dataset.
// It implements poller.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the announcement topic.
func NewAnnouncer(brokers []string, topic string, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce publishes a single dataset-update message. Messages are
// keyed by family so consumers see per-family ordering.
func (a *Announcer) Announce(ctx context.Context, ds domain.PublishedDataset) error {
	msg, err := serializeToMessage(ds)
	if err != nil {
		return err
	}
	if err := a.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("announce dataset update: %w", err)
	}
	a.logger.Debug("announced dataset update",
		"family", ds.Family,
		"cycle", ds.Metadata.Cycle.Label(),
	)
	return nil
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeToMessage marshals a published dataset into a Kafka message.
func serializeToMessage(ds domain.PublishedDataset) (kafkago.Message, error) {
	data, err := json.Marshal(ds)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dataset update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ds.Family),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "cycle", Value: []byte(ds.Metadata.Cycle.Label())},
			{Key: "download_time", Value: []byte(ds.DownloadTime.Format(time.RFC3339))},
		},
	}, nil
}
