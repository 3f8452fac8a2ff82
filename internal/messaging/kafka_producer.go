package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mamadbah2/smartstore/internal/domain/models"
)

// MessageWriter is the subset of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher streams alert events to a Kafka topic. It satisfies alerts.Sink.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher builds a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}
	return NewKafkaPublisherWithWriter(writer)
}

// NewKafkaPublisherWithWriter wraps an existing writer.
func NewKafkaPublisherWithWriter(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Name identifies the publisher in logs.
func (p *KafkaPublisher) Name() string { return "kafka" }

// Deliver publishes the alert keyed by bin so one bin's alerts stay ordered.
func (p *KafkaPublisher) Deliver(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(alert.BinID),
		Value: payload,
		Time:  alert.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("inventory.alert")},
			{Key: "severity", Value: []byte(alert.Severity)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("write alert event to kafka: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
