// Package repository persists tokens, users, wallets and transactions. Each
// concern has a postgres implementation and an in-memory one used by the
// mock server and the tests.
package repository

import (
	"context"

	"github.com/ecochain/token-catalog/internal/model"
)

// Tokens stores catalog entries and their detail extras
type Tokens interface {
	// List returns the tokens whose name or symbol contains search, in
	// insertion order. Ordering and pagination happen in the catalog package.
	List(ctx context.Context, search string) ([]model.Token, error)
	ListByCreator(ctx context.Context, creator string) ([]model.Token, error)
	GetByID(ctx context.Context, id string) (*model.Token, error)
	// Create inserts a token. A symbol already taken, compared
	// case-insensitively, yields an apperr Conflict.
	Create(ctx context.Context, token *model.Token) error
	Update(ctx context.Context, id string, update model.TokenUpdate) (*model.Token, error)
	Delete(ctx context.Context, id string) error
	AddHolders(ctx context.Context, id string, delta int) error

	GetExtras(ctx context.Context, id string) (*model.DetailExtras, error)
	SaveExtras(ctx context.Context, extras *model.DetailExtras) error
}

// Users stores wallet-backed accounts and their portfolios
type Users interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByAddress(ctx context.Context, address string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)
	SetConnected(ctx context.Context, id string, connected bool) error
	Delete(ctx context.Context, id string) error

	AddOwned(ctx context.Context, id, tokenID string) error
	RemoveOwned(ctx context.Context, id, tokenID string) error
	AddCreated(ctx context.Context, id, tokenID string) error
}

// Wallets stores wallet connection records and balances
type Wallets interface {
	Get(ctx context.Context, address string) (*model.Wallet, error)
	Upsert(ctx context.Context, wallet *model.Wallet) error
	SetConnected(ctx context.Context, address string, connected bool) error
	AdjustBalance(ctx context.Context, address, asset string, delta float64) error
}

// Transactions stores settlement records
type Transactions interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByAddress(ctx context.Context, address string) ([]model.Transaction, error)
}
