package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer used by the producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles producing events to Kafka topics
type Producer struct {
	mu         sync.Mutex
	writers    map[string]MessageWriter
	brokers    []string
	clientID   string
	maxRetries uint64
	newWriter  func(topic string) MessageWriter
	logger     *zap.Logger
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, clientID string, logger *zap.Logger) *Producer {
	p := &Producer{
		writers:    make(map[string]MessageWriter),
		brokers:    brokers,
		clientID:   clientID,
		maxRetries: 3,
		logger:     logger,
	}
	p.newWriter = p.kafkaWriter
	return p
}

func (p *Producer) kafkaWriter(topic string) MessageWriter {
	return &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: p.clientID,
		},
	}
}

// getWriter returns a Kafka writer for the specified topic
func (p *Producer) getWriter(topic string) MessageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := p.newWriter(topic)
	p.writers[topic] = writer
	return writer
}

// Publish sends an event to a Kafka topic, retrying with exponential backoff
func (p *Producer) Publish(ctx context.Context, topic string, event Event) error {
	writer := p.getWriter(topic)

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event",
			zap.String("topic", topic),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		return writer.WriteMessages(ctx, msg)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, p.maxRetries), ctx))
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("topic", topic),
			zap.String("key", event.Key),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event published",
		zap.String("topic", topic),
		zap.String("type", string(event.Type)),
		zap.String("key", event.Key))

	return nil
}

// Close closes all Kafka writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
	return nil
}
