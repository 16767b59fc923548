package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
)

// MemoryTokenRepository keeps tokens in process memory
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens []model.Token
	extras map[string]model.DetailExtras
}

// NewMemoryTokenRepository creates a repository holding seed
func NewMemoryTokenRepository(seed []model.Token, extras []model.DetailExtras) *MemoryTokenRepository {
	r := &MemoryTokenRepository{
		tokens: make([]model.Token, len(seed)),
		extras: make(map[string]model.DetailExtras, len(extras)),
	}
	copy(r.tokens, seed)
	for _, e := range extras {
		r.extras[e.TokenID] = e
	}
	return r
}

// List returns the tokens matching search
func (r *MemoryTokenRepository) List(ctx context.Context, search string) ([]model.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Symbol), needle) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListByCreator returns the tokens created by creator, newest first
func (r *MemoryTokenRepository) ListByCreator(ctx context.Context, creator string) ([]model.Token, error) {
	r.mu.RLock()
	out := make([]model.Token, 0)
	for _, t := range r.tokens {
		if strings.EqualFold(t.CreatedBy, creator) {
			out = append(out, t)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID returns the token with id
func (r *MemoryTokenRepository) GetByID(ctx context.Context, id string) (*model.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		t := r.tokens[i]
		return &t, nil
	}
	return nil, apperr.NotFound("Token")
}

// Create appends token, rejecting a duplicate symbol
func (r *MemoryTokenRepository) Create(ctx context.Context, token *model.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if strings.EqualFold(t.Symbol, token.Symbol) {
			return apperr.Conflict(errSymbolTaken)
		}
		if t.ID == token.ID {
			return apperr.Conflict("Token already exists")
		}
	}
	r.tokens = append(r.tokens, *token)
	return nil
}

// Update applies the non-nil fields of update
func (r *MemoryTokenRepository) Update(ctx context.Context, id string, update model.TokenUpdate) (*model.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, apperr.NotFound("Token")
	}

	t := applyTokenUpdate(r.tokens[i], update, time.Now().UTC())
	r.tokens[i] = t
	return &t, nil
}

// Delete removes the token and its extras
func (r *MemoryTokenRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return apperr.NotFound("Token")
	}
	r.tokens = append(r.tokens[:i:i], r.tokens[i+1:]...)
	delete(r.extras, id)
	return nil
}

// AddHolders adjusts the holder count, never below zero
func (r *MemoryTokenRepository) AddHolders(ctx context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return apperr.NotFound("Token")
	}
	r.tokens[i].Holders += delta
	if r.tokens[i].Holders < 0 {
		r.tokens[i].Holders = 0
	}
	return nil
}

// GetExtras returns the detail extras of a token, nil when it has none
func (r *MemoryTokenRepository) GetExtras(ctx context.Context, id string) (*model.DetailExtras, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.extras[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// SaveExtras stores the detail extras of a token
func (r *MemoryTokenRepository) SaveExtras(ctx context.Context, extras *model.DetailExtras) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(extras.TokenID) < 0 {
		return apperr.NotFound("Token")
	}
	r.extras[extras.TokenID] = *extras
	return nil
}

func (r *MemoryTokenRepository) indexOf(id string) int {
	for i := range r.tokens {
		if r.tokens[i].ID == id {
			return i
		}
	}
	return -1
}

const errSymbolTaken = "Token symbol already exists"

func applyTokenUpdate(t model.Token, u model.TokenUpdate, now time.Time) model.Token {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.ImageURL != nil {
		t.ImageURL = u.ImageURL
	}
	if u.Price != nil {
		t.Price = *u.Price
	}
	if u.MarketCap != nil {
		t.MarketCap = *u.MarketCap
	}
	if u.Volume != nil {
		t.Volume = *u.Volume
	}
	t.UpdatedAt = &now
	return t
}
