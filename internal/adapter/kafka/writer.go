package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-sensor-bridge/internal/config"
	"github.com/couchcryptid/weather-sensor-bridge/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const emitTimeout = 5 * time.Second

// Writer produces one message per canonical record.
// It implements pipeline.Emitter.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: emitTimeout,
	}
	return &Writer{writer: w, logger: logger}
}

// Emit publishes rec keyed by its sensor id, so readings from one sensor stay
// ordered within a partition.
func (w *Writer) Emit(ctx context.Context, rec domain.CanonicalRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, emitTimeout)
	defer cancel()
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write record %s: %w", rec.SensorID, err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a CanonicalRecord into a Kafka message.
func serializeToMessage(rec domain.CanonicalRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.SensorID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "sensor_type", Value: []byte(rec.SensorType.String())},
			{Key: "received_at", Value: []byte(rec.ReceivedAt.Format(time.RFC3339))},
		},
	}, nil
}
