package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/mockdata"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededTokens(t *testing.T) *MemoryTokenRepository {
	t.Helper()
	return NewMemoryTokenRepository(mockdata.Tokens(time.Now()), mockdata.Extras())
}

func TestMemoryTokens_ListSearch(t *testing.T) {
	repo := seededTokens(t)

	all, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 15)

	green, err := repo.List(context.Background(), "GREEN")
	require.NoError(t, err)
	assert.Len(t, green, 2)
}

func TestMemoryTokens_CreateRejectsSymbolInAnyCase(t *testing.T) {
	repo := seededTokens(t)

	err := repo.Create(context.Background(), &model.Token{ID: "new", Name: "Eco Two", Symbol: "eco"})

	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Equal(t, "Token symbol already exists", apperr.MessageOf(err))
}

func TestMemoryTokens_CreateThenGet(t *testing.T) {
	repo := seededTokens(t)
	token := &model.Token{ID: "abc", Name: "Solar Power Token", Symbol: "SPT", Description: "Funding solar farms"}

	require.NoError(t, repo.Create(context.Background(), token))
	got, err := repo.GetByID(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, token.Name, got.Name)
	assert.Equal(t, token.Symbol, got.Symbol)
	assert.Equal(t, token.Description, got.Description)
}

func TestMemoryTokens_UpdateAndDelete(t *testing.T) {
	repo := seededTokens(t)
	name := "Renamed Token"

	got, err := repo.Update(context.Background(), "1", model.TokenUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Token", got.Name)
	assert.Equal(t, "MNT", got.Symbol)
	assert.NotNil(t, got.UpdatedAt)

	require.NoError(t, repo.Delete(context.Background(), "1"))
	_, err = repo.GetByID(context.Background(), "1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	extras, err := repo.GetExtras(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, extras)

	assert.True(t, errors.Is(repo.Delete(context.Background(), "1"), apperr.ErrNotFound))
}

func TestMemoryTokens_HoldersNeverNegative(t *testing.T) {
	repo := NewMemoryTokenRepository([]model.Token{{ID: "1", Symbol: "AA", Holders: 1}}, nil)

	require.NoError(t, repo.AddHolders(context.Background(), "1", -5))
	got, _ := repo.GetByID(context.Background(), "1")
	assert.Zero(t, got.Holders)
}

func TestMemoryTokens_ListByCreatorNewestFirst(t *testing.T) {
	now := time.Now()
	repo := NewMemoryTokenRepository([]model.Token{
		{ID: "old", Symbol: "AA", CreatedBy: "alice", CreatedAt: now.Add(-time.Hour)},
		{ID: "other", Symbol: "BB", CreatedBy: "bob", CreatedAt: now},
		{ID: "new", Symbol: "CC", CreatedBy: "alice", CreatedAt: now},
	}, nil)

	got, err := repo.ListByCreator(context.Background(), "alice")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
}

func TestMemoryTokens_SaveExtrasRequiresToken(t *testing.T) {
	repo := NewMemoryTokenRepository(nil, nil)

	err := repo.SaveExtras(context.Background(), &model.DetailExtras{TokenID: "missing"})

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMemoryUsers_Portfolio(t *testing.T) {
	repo := NewMemoryUserRepository(mockdata.Users(time.Now())...)
	ctx := context.Background()

	require.NoError(t, repo.AddOwned(ctx, "noname", "2"))
	err := repo.AddOwned(ctx, "noname", "2")
	assert.Equal(t, "Token already in portfolio", apperr.MessageOf(err))

	u, err := repo.GetByID(ctx, "noname")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, u.TokensOwned)

	u.TokensOwned[0] = "mutated"
	again, _ := repo.GetByID(ctx, "noname")
	assert.Equal(t, []string{"2"}, again.TokensOwned)

	require.NoError(t, repo.RemoveOwned(ctx, "noname", "2"))
	u, _ = repo.GetByID(ctx, "noname")
	assert.Empty(t, u.TokensOwned)
}

func TestMemoryUsers_LookupByAddressIgnoresCase(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	addr := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"

	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Address: addr}))
	assert.True(t, errors.Is(repo.Create(ctx, &model.User{ID: "u2", Address: addr}), apperr.ErrConflict))

	u, err := repo.GetByAddress(ctx, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = repo.GetByID(ctx, "nobody")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMemoryWallets_BalanceAndOverdraft(t *testing.T) {
	repo := NewMemoryWalletRepository()
	ctx := context.Background()
	addr := "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD"

	require.NoError(t, repo.Upsert(ctx, &model.Wallet{Address: addr, Balances: map[string]float64{"USDT": 0}}))
	require.NoError(t, repo.AdjustBalance(ctx, addr, "ECO", 10))

	err := repo.AdjustBalance(ctx, addr, "ECO", -11)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	require.NoError(t, repo.Upsert(ctx, &model.Wallet{Address: addr, IsConnected: true}))
	w, err := repo.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, 10.0, w.Balances["ECO"])
	assert.True(t, w.IsConnected)
	assert.Equal(t, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", w.Address)
}

func TestMemoryTransactions_ListByAddress(t *testing.T) {
	repo := NewMemoryTransactionRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &model.Transaction{ID: "1", From: "0xa", To: "0xb", TransactionHash: "0x1", Timestamp: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &model.Transaction{ID: "2", From: "0xb", To: "0xa", TransactionHash: "0x2", Timestamp: now}))
	assert.True(t, errors.Is(repo.Create(ctx, &model.Transaction{ID: "3", TransactionHash: "0x2"}), apperr.ErrConflict))

	txs, err := repo.ListByAddress(ctx, "0xA")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "2", txs[0].ID)
}
