package repository

import (
	"context"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// UserRepository handles database operations for users. Portfolios are kept
// in TEXT[] columns.
type UserRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type userRow struct {
	model.User
	Created pq.StringArray `db:"tokens_created"`
	Owned   pq.StringArray `db:"tokens_owned"`
}

func (row userRow) toModel() *model.User {
	u := row.User
	u.TokensCreated = []string(row.Created)
	u.TokensOwned = []string(row.Owned)
	return &u
}

const userColumns = `id, address, name, balance, avatar, is_connected, is_verified,
	tokens_created, tokens_owned, created_at, updated_at`

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, r.fail("Failed to get user", notFound(err, "User"), zap.String("id", id))
	}
	return row.toModel(), nil
}

// GetByAddress retrieves a user by wallet address, case-insensitively
func (r *UserRepository) GetByAddress(ctx context.Context, address string) (*model.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE LOWER(address) = LOWER($1)`, address)
	if err != nil {
		return nil, r.fail("Failed to get user by address", notFound(err, "User"), zap.String("address", address))
	}
	return row.toModel(), nil
}

// Create inserts a user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Address,
		user.Name,
		user.Balance,
		user.Avatar,
		user.IsConnected,
		user.IsVerified,
		pq.Array(nonNil(user.TokensCreated)),
		pq.Array(nonNil(user.TokensOwned)),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User already exists")
		}
		return r.fail("Failed to create user", err, zap.String("address", user.Address))
	}
	return nil
}

// Update applies the non-nil fields of update
func (r *UserRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	query := `UPDATE users SET
			name = COALESCE($2, name),
			balance = COALESCE($3, balance),
			avatar = COALESCE($4, avatar),
			updated_at = $5
		WHERE id = $1
		RETURNING ` + userColumns

	var row userRow
	err := r.db.GetContext(ctx, &row, query, id, update.Name, update.Balance, update.Avatar, time.Now().UTC())
	if err != nil {
		return nil, r.fail("Failed to update user", notFound(err, "User"), zap.String("id", id))
	}
	return row.toModel(), nil
}

// SetConnected records the connection flag of a user
func (r *UserRepository) SetConnected(ctx context.Context, id string, connected bool) error {
	return r.exec(ctx, "Failed to update user connection",
		`UPDATE users SET is_connected = $2, updated_at = NOW() WHERE id = $1`, id, connected)
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "Failed to delete user", `DELETE FROM users WHERE id = $1`, id)
}

// AddOwned appends tokenID to the user's portfolio
func (r *UserRepository) AddOwned(ctx context.Context, id, tokenID string) error {
	var owned pq.StringArray
	err := r.db.GetContext(ctx, &owned, `SELECT tokens_owned FROM users WHERE id = $1`, id)
	if err != nil {
		return r.fail("Failed to load portfolio", notFound(err, "User"), zap.String("id", id))
	}
	if contains(owned, tokenID) {
		return apperr.Conflict(errAlreadyOwned)
	}

	return r.exec(ctx, "Failed to add token to portfolio",
		`UPDATE users SET tokens_owned = array_append(tokens_owned, $2), updated_at = NOW() WHERE id = $1`,
		id, tokenID)
}

// RemoveOwned removes tokenID from the user's portfolio
func (r *UserRepository) RemoveOwned(ctx context.Context, id, tokenID string) error {
	return r.exec(ctx, "Failed to remove token from portfolio",
		`UPDATE users SET tokens_owned = array_remove(tokens_owned, $2), updated_at = NOW() WHERE id = $1`,
		id, tokenID)
}

// AddCreated records that the user created tokenID
func (r *UserRepository) AddCreated(ctx context.Context, id, tokenID string) error {
	return r.exec(ctx, "Failed to record created token",
		`UPDATE users SET
				tokens_created = CASE WHEN $2 = ANY(tokens_created) THEN tokens_created
					ELSE array_append(tokens_created, $2) END,
				updated_at = NOW()
			WHERE id = $1`, id, tokenID)
}

func (r *UserRepository) exec(ctx context.Context, msg, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return r.fail(msg, err)
	}
	return requireAffected(res, "User")
}

func (r *UserRepository) fail(msg string, err error, fields ...zap.Field) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		r.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
