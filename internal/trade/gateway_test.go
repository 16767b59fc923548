package trade

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
	"github.com/ecochain/token-catalog/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x1234567890abcdef1234567890abcdef12345678"

func buy(qty float64) model.TradeIntent {
	return model.TradeIntent{Kind: model.IntentBuy, TokenID: "1", Quantity: qty, User: wallet}
}

func TestGateway_SettlesValidIntent(t *testing.T) {
	g := NewGateway(NewMockSettler(0), nil)

	receipt, err := g.Submit(context.Background(), buy(2))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.TransactionHash, "0x"))
	assert.Len(t, receipt.TransactionHash, 66)
	assert.Equal(t, 2.0, receipt.Amount)
	assert.Equal(t, StateSettled, g.State())
}

func TestGateway_ValidationFailureKeepsState(t *testing.T) {
	calls := 0
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		calls++
		return &model.Receipt{}, nil
	}), nil)

	_, err := g.Submit(context.Background(), buy(0))

	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, StateIdle, g.State())
	assert.Zero(t, calls)
}

func TestGateway_RejectsReentrantSubmission(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		close(started)
		<-release
		return &model.Receipt{TransactionHash: "0x1"}, nil
	}), nil)

	done := make(chan error, 1)
	go func() {
		_, err := g.Submit(context.Background(), buy(1))
		done <- err
	}()
	<-started

	assert.Equal(t, StateSubmitting, g.State())
	_, err := g.Submit(context.Background(), buy(1))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	g.Reset()
	assert.Equal(t, StateSubmitting, g.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateSettled, g.State())
}

func TestGateway_SettlementFailureIsTypedTransport(t *testing.T) {
	cause := errors.New("rpc unavailable")
	attempts := 0
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		attempts++
		return nil, cause
	}), nil)

	_, err := g.Submit(context.Background(), buy(1))

	var serr *SettlementError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, model.IntentBuy, serr.Kind)
	assert.True(t, errors.Is(err, apperr.ErrTransport))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, StateFailed, g.State())

	_, last := g.Last()
	assert.Equal(t, err, last)

	g.Reset()
	assert.Equal(t, StateIdle, g.State())
}

func TestGateway_BackendRejectionKeepsKind(t *testing.T) {
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		return nil, apperr.Conflict("Token with this symbol already exists")
	}), nil)

	_, err := g.Submit(context.Background(), model.TradeIntent{
		Kind: model.IntentCreate,
		User: wallet,
		Create: &model.CreateTokenInput{
			Name: "EcoChain Two", Symbol: "eco", Emission: 1000, Description: "another eco token",
		},
	})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Token with this symbol already exists", apperr.MessageOf(err))
}

func TestGateway_NilReceiptIsFailure(t *testing.T) {
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		return nil, nil
	}), nil)

	_, err := g.Submit(context.Background(), buy(1))

	assert.True(t, errors.Is(err, apperr.ErrTransport))
}

func TestGateway_CreateUppercasesSymbolAndGetsContract(t *testing.T) {
	var seen model.TradeIntent
	mock := NewMockSettler(0)
	g := NewGateway(SettlerFunc(func(ctx context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		seen = intent
		return mock.Settle(ctx, intent)
	}), nil)

	receipt, err := g.Submit(context.Background(), model.TradeIntent{
		Kind: model.IntentCreate,
		User: strings.ToUpper(wallet[:2]) + wallet[2:],
		Create: &model.CreateTokenInput{
			Name: "Solar Power Token", Symbol: "spt", Emission: 5e8, Description: "Funding solar farms",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "SPT", seen.Create.Symbol)
	assert.True(t, strings.HasPrefix(receipt.ContractAddress, "0x"))
	assert.Len(t, receipt.ContractAddress, 42)
	assert.Equal(t, 5e8, receipt.Amount)
}

func TestGateway_CancelledCallerGetsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGateway(SettlerFunc(func(_ context.Context, intent model.TradeIntent) (*model.Receipt, error) {
		cancel()
		return &model.Receipt{TransactionHash: "0xabc"}, nil
	}), nil)

	receipt, err := g.Submit(ctx, buy(1))

	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, context.Canceled)
	last, _ := g.Last()
	require.NotNil(t, last)
	assert.Equal(t, "0xabc", last.TransactionHash)
}

func TestMockSettler_HonoursDelayAndCancel(t *testing.T) {
	m := NewMockSettler(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Settle(ctx, buy(1))

	assert.True(t, errors.Is(err, apperr.ErrTransport))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockSettler_UniqueHashes(t *testing.T) {
	m := NewMockSettler(0)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		r, err := m.Settle(context.Background(), buy(1))
		require.NoError(t, err)
		assert.False(t, seen[r.TransactionHash])
		seen[r.TransactionHash] = true
	}
}

func TestRegistry_OneGatewayPerWallet(t *testing.T) {
	r := NewRegistry(NewMockSettler(0), nil)

	a := r.For(wallet)
	b := r.For(strings.ToUpper(wallet[:2]) + strings.ToUpper(wallet[2:]))
	c := r.For("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_GatewaysUseConfiguredValidator(t *testing.T) {
	r := NewRegistry(NewMockSettler(0), nil, WithValidator(validator.ValidateCatalogIntent))
	intent := model.TradeIntent{Kind: model.IntentCreate, Create: &model.CreateTokenInput{
		Name:        "Cool Coin",
		Symbol:      "B4D",
		Emission:    100,
		Description: "Cool coin",
	}}

	receipt, err := r.For("").Submit(context.Background(), intent)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ContractAddress)

	_, err = NewGateway(NewMockSettler(0), nil).Submit(context.Background(), intent)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
