package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// setupPostgres starts a PostgreSQL container and applies the migrations.
// Set ECOCHAIN_INTEGRATION=1 to run these tests.
func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("ECOCHAIN_INTEGRATION") != "1" {
		t.Skip("set ECOCHAIN_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("ecochain"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db.DB))
	return db
}

func TestPostgresTokens_RoundTripAndConflict(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTokenRepository(db, zap.NewNop())
	ctx := context.Background()

	token := &model.Token{
		ID:          "t1",
		Name:        "EcoChain Token",
		Symbol:      "ECO",
		Price:       0.125,
		MarketCap:   "$12.8k",
		Volume:      "$0",
		Blockchain:  model.DefaultBlockchain,
		CreatedBy:   "crypto_dev",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
		Description: "Sustainable blockchain for a greener tomorrow.",
		Decimals:    model.DefaultDecimals,
	}
	require.NoError(t, repo.Create(ctx, token))

	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, token.Name, got.Name)
	assert.Equal(t, token.Symbol, got.Symbol)
	assert.Equal(t, token.Description, got.Description)

	dup := *token
	dup.ID = "t2"
	dup.Symbol = "eco"
	err = repo.Create(ctx, &dup)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	found, err := repo.List(ctx, "eco")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	none, err := repo.List(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestPostgresTokens_ExtrasAndHolders(t *testing.T) {
	db := setupPostgres(t)
	repo := NewTokenRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Token{ID: "t1", Name: "Green Coin", Symbol: "GRC", CreatedAt: time.Now()}))

	extras, err := repo.GetExtras(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, extras)

	require.NoError(t, repo.SaveExtras(ctx, &model.DetailExtras{
		TokenID:         "t1",
		FullDescription: "Supporting eco-friendly blockchain initiatives.",
		Raised:          "$3,600,000",
		RaiseTarget:     "$2,400,000",
		Creator:         &model.CreatorSummary{ID: "eco_friendly", Username: "Creator_eco_friendly"},
	}))
	extras, err = repo.GetExtras(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, extras.Creator)
	assert.Equal(t, "Creator_eco_friendly", extras.Creator.Username)

	assert.True(t, errors.Is(repo.SaveExtras(ctx, &model.DetailExtras{TokenID: "missing"}), apperr.ErrNotFound))

	require.NoError(t, repo.AddHolders(ctx, "t1", 2))
	require.NoError(t, repo.AddHolders(ctx, "t1", -5))
	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, got.Holders)
}

func TestPostgresUsersAndWallets(t *testing.T) {
	db := setupPostgres(t)
	users := NewUserRepository(db, zap.NewNop())
	wallets := NewWalletRepository(db, zap.NewNop())
	txs := NewTransactionRepository(db, zap.NewNop())
	ctx := context.Background()
	addr := "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"
	now := time.Now().UTC()

	require.NoError(t, users.Create(ctx, &model.User{ID: "u1", Address: addr, Name: "Wallet_0xabcd...abcd", Balance: model.DefaultBalance, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, users.AddOwned(ctx, "u1", "t1"))
	assert.True(t, errors.Is(users.AddOwned(ctx, "u1", "t1"), apperr.ErrConflict))

	u, err := users.GetByAddress(ctx, "0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, u.TokensOwned)

	balance := "10.00 USDT"
	u, err = users.Update(ctx, "u1", model.UserUpdate{Balance: &balance})
	require.NoError(t, err)
	assert.Equal(t, balance, u.Balance)
	assert.Equal(t, "Wallet_0xabcd...abcd", u.Name)

	require.NoError(t, wallets.Upsert(ctx, &model.Wallet{Address: addr, UserID: "u1", IsConnected: true}))
	require.NoError(t, wallets.AdjustBalance(ctx, addr, "ECO", 3))
	assert.True(t, errors.Is(wallets.AdjustBalance(ctx, addr, "ECO", -4), apperr.ErrValidation))

	w, err := wallets.Get(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, 3.0, w.Balances["ECO"])
	assert.Equal(t, 0.0, w.Balances["USDT"])

	require.NoError(t, txs.Create(ctx, &model.Transaction{
		ID: "tx1", From: addr, To: "0x0", TokenID: "t1", Amount: 3,
		TransactionHash: "0xhash", Status: model.TxConfirmed, Type: model.TxBuy,
		Fee: model.DefaultTransactionFee, Timestamp: now,
	}))
	list, err := txs.ListByAddress(ctx, addr)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, users.Delete(ctx, "u1"))
	assert.True(t, errors.Is(users.Delete(ctx, "u1"), apperr.ErrNotFound))
}
