package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ecochain/token-catalog/internal/apperr"
	"github.com/ecochain/token-catalog/internal/model"
)

// MemoryUserRepository keeps users in process memory
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUserRepository creates a repository holding seed
func NewMemoryUserRepository(seed ...model.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[string]*model.User, len(seed))}
	for _, u := range seed {
		u := cloneUser(u)
		r.users[u.ID] = &u
	}
	return r
}

// GetByID returns the user with id
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	out := cloneUser(*u)
	return &out, nil
}

// GetByAddress returns the user owning address, compared case-insensitively
func (r *MemoryUserRepository) GetByAddress(ctx context.Context, address string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Address, address) {
			out := cloneUser(*u)
			return &out, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// Create stores user, rejecting a duplicate address
func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Address, user.Address) {
			return apperr.Conflict("User already exists")
		}
	}
	u := cloneUser(*user)
	r.users[u.ID] = &u
	return nil
}

// Update applies the non-nil fields of update
func (r *MemoryUserRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Balance != nil {
		u.Balance = *update.Balance
	}
	if update.Avatar != nil {
		u.Avatar = update.Avatar
	}
	u.UpdatedAt = time.Now().UTC()

	out := cloneUser(*u)
	return &out, nil
}

// SetConnected records the connection flag of a user
func (r *MemoryUserRepository) SetConnected(ctx context.Context, id string, connected bool) error {
	return r.mutate(id, func(u *model.User) error {
		u.IsConnected = connected
		return nil
	})
}

// Delete removes the user
func (r *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(r.users, id)
	return nil
}

// AddOwned adds tokenID to the user's portfolio
func (r *MemoryUserRepository) AddOwned(ctx context.Context, id, tokenID string) error {
	return r.mutate(id, func(u *model.User) error {
		if contains(u.TokensOwned, tokenID) {
			return apperr.Conflict(errAlreadyOwned)
		}
		u.TokensOwned = append(u.TokensOwned, tokenID)
		return nil
	})
}

// RemoveOwned removes tokenID from the user's portfolio
func (r *MemoryUserRepository) RemoveOwned(ctx context.Context, id, tokenID string) error {
	return r.mutate(id, func(u *model.User) error {
		u.TokensOwned = without(u.TokensOwned, tokenID)
		return nil
	})
}

// AddCreated records that the user created tokenID
func (r *MemoryUserRepository) AddCreated(ctx context.Context, id, tokenID string) error {
	return r.mutate(id, func(u *model.User) error {
		if !contains(u.TokensCreated, tokenID) {
			u.TokensCreated = append(u.TokensCreated, tokenID)
		}
		return nil
	})
}

func (r *MemoryUserRepository) mutate(id string, fn func(*model.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

const errAlreadyOwned = "Token already in portfolio"

func cloneUser(u model.User) model.User {
	u.TokensCreated = append([]string(nil), u.TokensCreated...)
	u.TokensOwned = append([]string(nil), u.TokensOwned...)
	return u
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
