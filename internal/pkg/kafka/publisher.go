package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-payroll/internal/domain/outbox"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter returns a writer that routes messages by key hash, so every event
// of one aggregate lands on the same partition in order.
func NewWriter(brokers []string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

type Publisher struct {
	writer      MessageWriter
	topicPrefix string
}

func NewPublisher(writer MessageWriter, topicPrefix string) *Publisher {
	return &Publisher{writer: writer, topicPrefix: topicPrefix}
}

// Topic returns the topic an event is published to.
func (p *Publisher) Topic(event outbox.Event) string {
	if p.topicPrefix == "" {
		return event.EventType
	}
	return p.topicPrefix + "." + event.EventType
}

func (p *Publisher) Publish(ctx context.Context, event outbox.Event) error {
	msg := kafkago.Message{
		Topic: p.Topic(event),
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		},
		Time: event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
