// Package events publishes catalog and trade events to Kafka and to live
// websocket subscribers.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Type names an event
type Type string

const (
	TokenCreated     Type = "token.created"
	TokenUpdated     Type = "token.updated"
	TokenDeleted     Type = "token.deleted"
	TradeSettled     Type = "trade.settled"
	TradeFailed      Type = "trade.failed"
	WalletConnected  Type = "wallet.connected"
	WalletDisconnect Type = "wallet.disconnected"
)

// Event is the envelope written to every sink
type Event struct {
	Type       Type        `json:"type"`
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// New creates an event stamped with the current time
func New(t Type, key string, payload interface{}) Event {
	return Event{Type: t, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

// Publisher delivers events to a sink
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

// Nop discards every event
type Nop struct{}

// Publish does nothing
func (Nop) Publish(context.Context, string, Event) error { return nil }

// Fanout delivers each event to every sink. Sink failures are logged and do
// not stop delivery to the remaining sinks; the first error is returned.
type Fanout struct {
	sinks  []Publisher
	logger *zap.Logger
}

// NewFanout creates a publisher over sinks, skipping nil entries
func NewFanout(logger *zap.Logger, sinks ...Publisher) *Fanout {
	f := &Fanout{logger: logger}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Publish sends event to every sink
func (f *Fanout) Publish(ctx context.Context, topic string, event Event) error {
	var first error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, topic, event); err != nil {
			f.logger.Warn("Failed to publish event",
				zap.String("topic", topic),
				zap.String("type", string(event.Type)),
				zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Only forwards events of the listed types to sink and drops the rest
func Only(sink Publisher, types ...Type) Publisher {
	allowed := make(map[Type]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return filtered{sink: sink, allowed: allowed}
}

type filtered struct {
	sink    Publisher
	allowed map[Type]bool
}

func (f filtered) Publish(ctx context.Context, topic string, event Event) error {
	if !f.allowed[event.Type] {
		return nil
	}
	return f.sink.Publish(ctx, topic, event)
}
