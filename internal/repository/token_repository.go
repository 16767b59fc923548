package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const tokenColumns = `id, name, symbol, image_url, price, market_cap, volume, holders,
	blockchain, created_by, created_at, description, replies, contract_address,
	total_supply, circulating_supply, decimals, is_verified, updated_at`

// TokenRepository handles database operations for tokens
type TokenRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sqlx.DB, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the tokens whose name or symbol contains search, in insertion order
func (r *TokenRepository) List(ctx context.Context, search string) ([]model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR symbol ILIKE '%' || $1 || '%'
		ORDER BY seq`

	tokens := []model.Token{}
	if err := r.db.SelectContext(ctx, &tokens, query, likeEscaper.Replace(strings.TrimSpace(search))); err != nil {
		r.logger.Error("Failed to list tokens", zap.Error(err))
		return nil, err
	}
	return tokens, nil
}

// ListByCreator returns the tokens created by creator, newest first
func (r *TokenRepository) ListByCreator(ctx context.Context, creator string) ([]model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens
		WHERE LOWER(created_by) = LOWER($1)
		ORDER BY created_at DESC, seq`

	tokens := []model.Token{}
	if err := r.db.SelectContext(ctx, &tokens, query, creator); err != nil {
		r.logger.Error("Failed to list tokens by creator", zap.String("creator", creator), zap.Error(err))
		return nil, err
	}
	return tokens, nil
}

// GetByID retrieves a token by ID
func (r *TokenRepository) GetByID(ctx context.Context, id string) (*model.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	var token model.Token
	if err := r.db.GetContext(ctx, &token, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		r.logger.Error("Failed to get token", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &token, nil
}

// Create inserts a token. The unique index on LOWER(symbol) enforces
// case-insensitive symbol uniqueness.
func (r *TokenRepository) Create(ctx context.Context, token *model.Token) error {
	query := `INSERT INTO tokens (` + tokenColumns + `)
		VALUES (:id, :name, :symbol, :image_url, :price, :market_cap, :volume, :holders,
			:blockchain, :created_by, :created_at, :description, :replies, :contract_address,
			:total_supply, :circulating_supply, :decimals, :is_verified, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict(errSymbolTaken)
		}
		r.logger.Error("Failed to create token", zap.String("symbol", token.Symbol), zap.Error(err))
		return err
	}
	return nil
}

// Update applies the non-nil fields of update
func (r *TokenRepository) Update(ctx context.Context, id string, update model.TokenUpdate) (*model.Token, error) {
	query := `UPDATE tokens SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			image_url = COALESCE($4, image_url),
			price = COALESCE($5, price),
			market_cap = COALESCE($6, market_cap),
			volume = COALESCE($7, volume),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + tokenColumns

	var token model.Token
	err := r.db.GetContext(ctx, &token, query,
		id,
		update.Name,
		update.Description,
		update.ImageURL,
		update.Price,
		update.MarketCap,
		update.Volume,
		time.Now().UTC(),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Token")
		}
		r.logger.Error("Failed to update token", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &token, nil
}

// Delete removes a token; its detail row cascades
func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete token", zap.String("id", id), zap.Error(err))
		return err
	}
	return requireAffected(res, "Token")
}

// AddHolders adjusts the holder count, never below zero
func (r *TokenRepository) AddHolders(ctx context.Context, id string, delta int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET holders = GREATEST(holders + $2, 0), updated_at = NOW() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		r.logger.Error("Failed to update token holders", zap.String("id", id), zap.Error(err))
		return err
	}
	return requireAffected(res, "Token")
}

type extrasRow struct {
	TokenID         string         `db:"token_id"`
	FullDescription string         `db:"full_description"`
	ChartURL        string         `db:"chart_url"`
	Raised          string         `db:"raised"`
	RaiseTarget     string         `db:"raise_target"`
	CreatorID       sql.NullString `db:"creator_id"`
	CreatorAddress  sql.NullString `db:"creator_address"`
	CreatorUsername sql.NullString `db:"creator_username"`
	CreatorAvatar   sql.NullString `db:"creator_avatar"`
}

// GetExtras returns the detail extras of a token, nil when it has none
func (r *TokenRepository) GetExtras(ctx context.Context, id string) (*model.DetailExtras, error) {
	query := `SELECT token_id, full_description, chart_url, raised, raise_target,
			creator_id, creator_address, creator_username, creator_avatar
		FROM token_details WHERE token_id = $1`

	var row extrasRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get token details", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	extras := &model.DetailExtras{
		TokenID:         row.TokenID,
		FullDescription: row.FullDescription,
		ChartURL:        row.ChartURL,
		Raised:          row.Raised,
		RaiseTarget:     row.RaiseTarget,
	}
	if row.CreatorID.Valid || row.CreatorAddress.Valid {
		extras.Creator = &model.CreatorSummary{
			ID:       row.CreatorID.String,
			Address:  row.CreatorAddress.String,
			Username: row.CreatorUsername.String,
		}
		if row.CreatorAvatar.Valid {
			avatar := row.CreatorAvatar.String
			extras.Creator.Avatar = &avatar
		}
	}
	return extras, nil
}

// SaveExtras inserts or replaces the detail extras of a token
func (r *TokenRepository) SaveExtras(ctx context.Context, extras *model.DetailExtras) error {
	row := extrasRow{
		TokenID:         extras.TokenID,
		FullDescription: extras.FullDescription,
		ChartURL:        extras.ChartURL,
		Raised:          extras.Raised,
		RaiseTarget:     extras.RaiseTarget,
	}
	if c := extras.Creator; c != nil {
		row.CreatorID = sql.NullString{String: c.ID, Valid: c.ID != ""}
		row.CreatorAddress = sql.NullString{String: c.Address, Valid: c.Address != ""}
		row.CreatorUsername = sql.NullString{String: c.Username, Valid: c.Username != ""}
		if c.Avatar != nil {
			row.CreatorAvatar = sql.NullString{String: *c.Avatar, Valid: true}
		}
	}

	query := `INSERT INTO token_details (token_id, full_description, chart_url, raised, raise_target,
			creator_id, creator_address, creator_username, creator_avatar)
		VALUES (:token_id, :full_description, :chart_url, :raised, :raise_target,
			:creator_id, :creator_address, :creator_username, :creator_avatar)
		ON CONFLICT (token_id) DO UPDATE SET
			full_description = EXCLUDED.full_description,
			chart_url = EXCLUDED.chart_url,
			raised = EXCLUDED.raised,
			raise_target = EXCLUDED.raise_target,
			creator_id = EXCLUDED.creator_id,
			creator_address = EXCLUDED.creator_address,
			creator_username = EXCLUDED.creator_username,
			creator_avatar = EXCLUDED.creator_avatar`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if isForeignKeyViolation(err) {
			return apperr.NotFound("Token")
		}
		r.logger.Error("Failed to save token details", zap.String("id", extras.TokenID), zap.Error(err))
		return err
	}
	return nil
}
