package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when an Async publisher has no room for an event
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned by Publish after Close
var ErrClosed = errors.New("event publisher closed")

type queued struct {
	topic string
	event Event
}

// Async hands events to a background worker so that a slow sink never holds
// up the caller. Each delivery gets its own deadline, detached from the
// caller's context.
type Async struct {
	sink    Publisher
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

// NewAsync starts a worker delivering to sink. size bounds the number of
// pending events; timeout bounds each delivery.
func NewAsync(sink Publisher, size int, timeout time.Duration, logger *zap.Logger) *Async {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &Async{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
		queue:   make(chan queued, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish enqueues event without waiting for delivery
func (a *Async) Publish(_ context.Context, topic string, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- queued{topic: topic, event: event}:
		return nil
	default:
		a.logger.Warn("Dropping event, queue full",
			zap.String("topic", topic),
			zap.String("type", string(event.Type)),
			zap.String("key", event.Key))
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for q := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.sink.Publish(ctx, q.topic, q.event); err != nil {
			a.logger.Error("Failed to deliver event",
				zap.String("topic", q.topic),
				zap.String("type", string(q.event.Type)),
				zap.Error(err))
		}
		cancel()
	}
}

// Close stops accepting events and waits for the pending ones to be delivered
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
}
