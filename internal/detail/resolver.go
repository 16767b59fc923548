// Package detail resolves a token identifier into the merged detail record
// rendered by the token page.
package detail

import (
	"context"
	"errors"
	"strings"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/model"

	"go.uber.org/zap"
)

// TokenLookup finds a token among those already held in memory
type TokenLookup interface {
	Find(id string) (model.Token, bool)
}

// Fetcher loads a single token from the catalog backend. A missing token is
// reported with an apperr NotFound error.
type Fetcher interface {
	FetchToken(ctx context.Context, id string) (*model.Token, error)
}

// ExtrasSource loads the detail-only payload of a token. A token without
// extras is reported with a nil result or an apperr NotFound error.
type ExtrasSource interface {
	FetchExtras(ctx context.Context, id string) (*model.DetailExtras, error)
}

// Resolver merges a token with its detail extras
type Resolver struct {
	lookup  TokenLookup
	fetcher Fetcher
	extras  ExtrasSource
	logger  *zap.Logger
}

// NewResolver creates a resolver. Any collaborator may be nil: a nil lookup
// skips the in-memory step, a nil fetcher makes cache misses not-found and a
// nil extras source yields bare details.
func NewResolver(lookup TokenLookup, fetcher Fetcher, extras ExtrasSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		lookup:  lookup,
		fetcher: fetcher,
		extras:  extras,
		logger:  logger,
	}
}

// Resolve returns the detail record of id. Lookup order is the in-memory
// collection, then the fetcher; a token found in neither is NotFound.
// Backend failures are returned as Transport errors. If ctx is done by the
// time the backend answers, the late result is discarded and ctx.Err() is
// returned.
func (r *Resolver) Resolve(ctx context.Context, id string) (*model.TokenDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.NotFound("Token")
	}

	token, err := r.findToken(ctx, id)
	if err != nil {
		return nil, err
	}

	var extras *model.DetailExtras
	if r.extras != nil {
		extras, err = r.extras.FetchExtras(ctx, id)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				r.logger.Error("Failed to fetch token details", zap.String("token_id", id), zap.Error(err))
				return nil, asTransport("failed to load token details", err)
			}
			extras = nil
		}
	}

	return Merge(*token, extras), nil
}

func (r *Resolver) findToken(ctx context.Context, id string) (*model.Token, error) {
	if r.lookup != nil {
		if t, ok := r.lookup.Find(id); ok {
			return &t, nil
		}
	}

	if r.fetcher == nil {
		return nil, apperr.NotFound("Token")
	}

	token, err := r.fetcher.FetchToken(ctx, id)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Token")
		}
		r.logger.Error("Failed to fetch token", zap.String("token_id", id), zap.Error(err))
		return nil, asTransport("failed to load token", err)
	}
	if token == nil {
		return nil, apperr.NotFound("Token")
	}
	return token, nil
}

// Merge overlays extras on token. Extras win where both carry a value; with
// no extras the full description falls back to the token description.
func Merge(token model.Token, extras *model.DetailExtras) *model.TokenDetail {
	d := &model.TokenDetail{
		Token:           token,
		FullDescription: token.Description,
		RaisePercentage: "0%",
	}
	if extras == nil {
		return d
	}

	if extras.FullDescription != "" {
		d.FullDescription = extras.FullDescription
	}
	d.ChartURL = extras.ChartURL
	d.Raised = extras.Raised
	d.RaiseTarget = extras.RaiseTarget
	d.RaisePercentage = catalog.RaisePercentage(extras.Raised, extras.RaiseTarget)
	d.Creator = extras.Creator
	return d
}

func asTransport(msg string, err error) error {
	if apperr.KindOf(err) == apperr.KindTransport {
		return err
	}
	return apperr.Transport(msg, err)
}
