package infra

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher mirrors domain events to a Kafka topic for external consumers.
type EventPublisher struct {
	writer *kafka.Writer
	cb     *CircuitBreaker
}

// NewEventPublisher returns nil when no brokers are configured.
func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
		cb: NewCircuitBreaker(DefaultCBConfig("kafka")),
	}
}

// Publish writes one message under key. The writer hashes the key to pick the
// partition, so messages sharing a key keep their relative order.
func (p *EventPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.cb.Execute(func() error {
		return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
	})
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// Breaker exposes the circuit breaker state for health reporting.
func (p *EventPublisher) Breaker() *CircuitBreaker { return p.cb }
