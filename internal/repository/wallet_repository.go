package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WalletRepository handles database operations for wallets. Balances live in
// a JSONB column keyed by asset symbol.
type WalletRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *sqlx.DB, logger *zap.Logger) *WalletRepository {
	return &WalletRepository{
		db:     db,
		logger: logger,
	}
}

type walletRow struct {
	model.Wallet
	Balances []byte `db:"balances"`
}

// Get retrieves the wallet of address
func (r *WalletRepository) Get(ctx context.Context, address string) (*model.Wallet, error) {
	query := `SELECT address, user_id, public_key, balances, is_connected, created_at, updated_at
		FROM wallets WHERE address = $1`

	var row walletRow
	if err := r.db.GetContext(ctx, &row, query, strings.ToLower(address)); err != nil {
		err = notFound(err, "Wallet")
		if apperr.KindOf(err) == apperr.KindInternal {
			r.logger.Error("Failed to get wallet", zap.String("address", address), zap.Error(err))
		}
		return nil, err
	}

	w := row.Wallet
	w.Balances = map[string]float64{}
	if len(row.Balances) > 0 {
		if err := json.Unmarshal(row.Balances, &w.Balances); err != nil {
			return nil, err
		}
	}
	return &w, nil
}

// Upsert creates the wallet or updates its owner, key and connection flag.
// Stored balances are kept unless wallet carries some.
func (r *WalletRepository) Upsert(ctx context.Context, wallet *model.Wallet) error {
	var balances interface{}
	if len(wallet.Balances) > 0 {
		b, err := json.Marshal(wallet.Balances)
		if err != nil {
			return err
		}
		balances = string(b)
	}

	query := `INSERT INTO wallets (address, user_id, public_key, balances, is_connected, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4::jsonb, '{"USDT": 0}'::jsonb), $5, $6, $6)
		ON CONFLICT (address) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			public_key = EXCLUDED.public_key,
			balances = COALESCE($4::jsonb, wallets.balances),
			is_connected = EXCLUDED.is_connected,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		strings.ToLower(wallet.Address),
		wallet.UserID,
		wallet.PublicKey,
		balances,
		wallet.IsConnected,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to upsert wallet", zap.String("address", wallet.Address), zap.Error(err))
		return err
	}
	return nil
}

// SetConnected records the connection flag of a wallet
func (r *WalletRepository) SetConnected(ctx context.Context, address string, connected bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET is_connected = $2, updated_at = NOW() WHERE address = $1`,
		strings.ToLower(address), connected,
	)
	if err != nil {
		r.logger.Error("Failed to update wallet connection", zap.String("address", address), zap.Error(err))
		return err
	}
	return requireAffected(res, "Wallet")
}

// AdjustBalance adds delta to the balance of asset, rejecting overdrafts
func (r *WalletRepository) AdjustBalance(ctx context.Context, address, asset string, delta float64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current float64
	err = tx.GetContext(ctx, &current,
		`SELECT COALESCE((balances ->> $2)::double precision, 0) FROM wallets WHERE address = $1 FOR UPDATE`,
		strings.ToLower(address), asset,
	)
	if err != nil {
		err = notFound(err, "Wallet")
		if apperr.KindOf(err) == apperr.KindInternal {
			r.logger.Error("Failed to read wallet balance", zap.String("address", address), zap.Error(err))
		}
		return err
	}

	next := current + delta
	if next < 0 {
		return apperr.Validationf("Insufficient %s balance", asset)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balances = jsonb_set(balances, ARRAY[$2::text], to_jsonb($3::double precision)),
			updated_at = NOW() WHERE address = $1`,
		strings.ToLower(address), asset, next,
	)
	if err != nil {
		r.logger.Error("Failed to update wallet balance", zap.String("address", address), zap.Error(err))
		return err
	}
	return tx.Commit()
}

// TransactionRepository handles database operations for transactions
type TransactionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	query := `INSERT INTO transactions
			(id, from_address, to_address, token_id, amount, transaction_hash, status, type, fee, timestamp)
		VALUES
			(:id, :from_address, :to_address, :token_id, :amount, :transaction_hash, :status, :type, :fee, :timestamp)`

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Transaction already recorded")
		}
		r.logger.Error("Failed to record transaction", zap.String("hash", tx.TransactionHash), zap.Error(err))
		return err
	}
	return nil
}

// ListByAddress returns the transactions sent or received by address, newest first
func (r *TransactionRepository) ListByAddress(ctx context.Context, address string) ([]model.Transaction, error) {
	query := `SELECT id, from_address, to_address, token_id, amount, transaction_hash, status, type, fee, timestamp
		FROM transactions
		WHERE from_address = LOWER($1) OR to_address = LOWER($1)
		ORDER BY timestamp DESC`

	txs := []model.Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, address); err != nil {
		r.logger.Error("Failed to list transactions", zap.String("address", address), zap.Error(err))
		return nil, err
	}
	return txs, nil
}
