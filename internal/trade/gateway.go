package trade

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/validator"

	"go.uber.org/zap"
)

// State is the lifecycle position of the gateway's current intent
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSettled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSubmitting:
		return "submitting"
	case StateSettled:
		return "settled"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrSubmissionInFlight is returned when an intent is submitted while another
// one is still settling on the same gateway
var ErrSubmissionInFlight = &apperr.Error{
	Kind:    apperr.KindConflict,
	Message: "another transaction is still being processed",
}

var errNoReceipt = errors.New("settlement returned no receipt")

// Gateway validates intents and forwards them to a Settler, one at a time.
// It never retries and never touches the token store; callers refresh their
// state after a settled receipt.
type Gateway struct {
	settler  Settler
	validate func(model.TradeIntent) error
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	receipt *model.Receipt
	err     error
}

// Option configures a Gateway
type Option func(*Gateway)

// WithValidator replaces the checks an intent must pass before it is settled.
// The default is validator.ValidateIntent.
func WithValidator(validate func(model.TradeIntent) error) Option {
	return func(g *Gateway) {
		if validate != nil {
			g.validate = validate
		}
	}
}

// NewGateway creates an idle gateway
func NewGateway(settler Settler, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{settler: settler, validate: validator.ValidateIntent, logger: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Submit validates intent and settles it. Validation failures leave the
// gateway state untouched. A submission while another is in flight fails with
// ErrSubmissionInFlight. Settlement failures are returned as *SettlementError.
// If ctx is done when the settler answers, the outcome is still recorded but
// the caller receives ctx.Err().
func (g *Gateway) Submit(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
	intent = normalize(intent)
	if err := g.validate(intent); err != nil {
		return nil, err
	}

	g.mu.Lock()
	if g.state == StateSubmitting {
		g.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	g.state = StateSubmitting
	g.receipt = nil
	g.err = nil
	g.mu.Unlock()

	receipt, err := g.settler.Settle(ctx, intent)
	if err == nil && receipt == nil {
		err = errNoReceipt
	}

	g.mu.Lock()
	if err != nil {
		serr := newSettlementError(intent, err)
		g.state = StateFailed
		g.err = serr
		err = serr
	} else {
		g.state = StateSettled
		g.receipt = receipt
	}
	g.mu.Unlock()

	if err != nil {
		g.logger.Error("Settlement failed",
			zap.String("kind", string(intent.Kind)),
			zap.String("token_id", intent.TokenID),
			zap.String("user", intent.User),
			zap.Error(err),
		)
	} else {
		g.logger.Info("Intent settled",
			zap.String("kind", string(intent.Kind)),
			zap.String("token_id", intent.TokenID),
			zap.String("tx_hash", receipt.TransactionHash),
		)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// State returns the current state
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Last returns the outcome of the most recent settlement
func (g *Gateway) Last() (*model.Receipt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.receipt, g.err
}

// Reset returns a finished gateway to idle. It is a no-op while submitting.
func (g *Gateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateSubmitting {
		return
	}
	g.state = StateIdle
	g.receipt = nil
	g.err = nil
}

func normalize(intent model.TradeIntent) model.TradeIntent {
	intent.TokenID = strings.TrimSpace(intent.TokenID)
	intent.User = validator.NormalizeAddress(intent.User)
	if intent.Create != nil {
		c := *intent.Create
		c.Name = strings.TrimSpace(c.Name)
		c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
		c.Description = strings.TrimSpace(c.Description)
		intent.Create = &c
	}
	return intent
}
