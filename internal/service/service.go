package service

import (
	"context"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/events"
	"github.com/ecochain/token-catalog/internal/metrics"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/repository"
	"github.com/ecochain/token-catalog/internal/trade"

	"go.uber.org/zap"
)

// Topics names the Kafka topics events are published to
type Topics struct {
	Token string
	Trade string
}

// DefaultTopics returns the topic names used when none are configured
func DefaultTopics() Topics {
	return Topics{Token: "token-events", Trade: "trade-events"}
}

// publisher sends events without failing the operation that produced them
type publisher struct {
	events events.Publisher
	logger *zap.Logger
}

func (p publisher) publish(ctx context.Context, topic string, event events.Event) {
	if p.events == nil || topic == "" {
		return
	}
	if err := p.events.Publish(ctx, topic, event); err != nil {
		p.logger.Warn("Failed to publish event",
			zap.String("topic", topic),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}

// InstrumentSettler records settlement latency and outcomes for s
func InstrumentSettler(s trade.Settler) trade.Settler {
	return trade.SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		start := time.Now()
		receipt, err := s.Settle(ctx, intent)

		kind := string(intent.Kind)
		metrics.SettlementLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		outcome := "settled"
		if err != nil {
			outcome = "failed"
		}
		metrics.SettlementsTotal.WithLabelValues(kind, outcome).Inc()
		return receipt, err
	})
}

// repoSource adapts a token repository to the detail resolver
type repoSource struct {
	tokens repository.Tokens
}

// FetchToken implements detail.Fetcher
func (s repoSource) FetchToken(ctx context.Context, id string) (*model.Token, error) {
	return s.tokens.GetByID(ctx, id)
}

// FetchExtras implements detail.ExtrasSource
func (s repoSource) FetchExtras(ctx context.Context, id string) (*model.DetailExtras, error) {
	return s.tokens.GetExtras(ctx, id)
}

// settle submits intent on the wallet's gateway. The submission is detached
// from ctx so a client that goes away cannot strand a settled trade before
// it is recorded.
func settle(ctx context.Context, registry *trade.Registry, intent model.TradeIntent) (*model.Receipt, error) {
	return registry.For(intent.User).Submit(context.WithoutCancel(ctx), intent)
}

// ignoreConflict treats an already-applied change as success
func ignoreConflict(err error) error {
	if apperr.KindOf(err) == apperr.KindConflict {
		return nil
	}
	return err
}
