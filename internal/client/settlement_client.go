package client

import (
	"context"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// SettlementClient forwards trade intents to a remote settlement backend.
// It implements trade.Settler.
type SettlementClient struct {
	client *resty.Client
	logger *zap.Logger
}

// NewSettlementClient creates a settlement client for the backend at baseURL
func NewSettlementClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SettlementClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &SettlementClient{client: client, logger: logger}
}

// Settle posts intent to /v1/settlements and returns the backend's receipt
func (c *SettlementClient) Settle(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
	var receipt model.Receipt
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(intent).
		Post("/v1/settlements")
	if _, err := decode(resp, err, &receipt); err != nil {
		c.logger.Warn("Settlement request failed",
			zap.String("kind", string(intent.Kind)),
			zap.String("token_id", intent.TokenID),
			zap.Error(err))
		return nil, err
	}

	if receipt.Kind == "" {
		receipt.Kind = intent.Kind
	}
	if receipt.SettledAt.IsZero() {
		receipt.SettledAt = time.Now().UTC()
	}
	return &receipt, nil
}
