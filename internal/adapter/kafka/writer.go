package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/motostock-inventory-service/internal/config"
	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

// SnapshotKey is the message key of every dataset snapshot, so a compacted
// topic keeps only the latest one.
const SnapshotKey = "snapshot"

// messageWriter is the subset of kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces dataset snapshots and restock notifications.
// It implements pipeline.SnapshotPublisher and inventory.NotificationPublisher.
type Publisher struct {
	snapshots         messageWriter
	notifications     messageWriter
	snapshotTopic     string
	notificationTopic string
	logger            *slog.Logger
	metrics           *observability.Metrics
}

// NewPublisher creates Kafka producers for the configured topics.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	newWriter := func(topic string) *kafkago.Writer {
		return &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.KafkaBrokers...),
			Topic:        topic,
			Balancer:     &kafkago.LeastBytes{},
			RequiredAcks: kafkago.RequireAll,
		}
	}
	return &Publisher{
		snapshots:         newWriter(cfg.KafkaSnapshotTopic),
		notifications:     newWriter(cfg.KafkaNotificationTopic),
		snapshotTopic:     cfg.KafkaSnapshotTopic,
		notificationTopic: cfg.KafkaNotificationTopic,
		logger:            logger,
		metrics:           metrics,
	}
}

// PublishSnapshot writes one message holding the whole dataset.
func (p *Publisher) PublishSnapshot(ctx context.Context, ds domain.CachedDataset) error {
	msg, err := snapshotMessage(ds)
	if err != nil {
		return err
	}
	return p.write(ctx, p.snapshots, p.snapshotTopic, msg)
}

// PublishNotification writes one message per restock notification.
func (p *Publisher) PublishNotification(ctx context.Context, n domain.Notification) error {
	msg, err := notificationMessage(n)
	if err != nil {
		return err
	}
	return p.write(ctx, p.notifications, p.notificationTopic, msg)
}

func (p *Publisher) write(ctx context.Context, w messageWriter, topic string, msg kafkago.Message) error {
	if err := w.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.metrics.EventsPublished.WithLabelValues(topic, "success").Inc()
	p.logger.Debug("event published", "topic", topic, "key", string(msg.Key), "bytes", len(msg.Value))
	return nil
}

// Close flushes and closes both producers.
func (p *Publisher) Close() error {
	return errors.Join(p.snapshots.Close(), p.notifications.Close())
}

// snapshotMessage marshals a dataset into a Kafka message.
func snapshotMessage(ds domain.CachedDataset) (kafkago.Message, error) {
	if ds.Records == nil {
		ds.Records = []domain.StockRecord{}
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(SnapshotKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "record_count", Value: []byte(strconv.Itoa(len(ds.Records)))},
			{Key: "last_updated", Value: []byte(ds.LastUpdated.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// notificationMessage marshals a restock notification into a Kafka message
// keyed by city so one city's notifications stay ordered.
func notificationMessage(n domain.Notification) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(n.City),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "notification_id", Value: []byte(n.ID)},
			{Key: "created_at", Value: []byte(n.Timestamp.UTC().Format(time.RFC3339))},
		},
	}, nil
}
