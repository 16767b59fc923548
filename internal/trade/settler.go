// Package trade validates trade intents and dispatches them to a settlement
// backend.
package trade

import (
	"context"
	"fmt"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
)

// Settler executes a validated intent and returns its receipt
type Settler interface {
	Settle(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error)
}

// SettlerFunc adapts a function to the Settler interface
type SettlerFunc func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error)

// Settle calls f
func (f SettlerFunc) Settle(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
	return f(ctx, intent)
}

// SettlementError reports a failed settlement. Err is always classified:
// backend rejections keep their kind, anything else is a Transport error.
type SettlementError struct {
	Kind    model.IntentKind
	TokenID string
	Err     error
}

func (e *SettlementError) Error() string {
	if e.TokenID != "" {
		return fmt.Sprintf("%s %s settlement failed: %v", e.Kind, e.TokenID, e.Err)
	}
	return fmt.Sprintf("%s settlement failed: %v", e.Kind, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

func newSettlementError(intent model.TradeIntent, err error) *SettlementError {
	if apperr.KindOf(err) == apperr.KindInternal {
		err = apperr.Transport("settlement failed, please try again", err)
	}
	return &SettlementError{Kind: intent.Kind, TokenID: intent.TokenID, Err: err}
}
