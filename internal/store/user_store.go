package store

import (
	"sync"

	"github.com/ecochain/token-catalog/internal/model"
)

// UserStore holds the connected user of a session
type UserStore struct {
	mu   sync.RWMutex
	user *model.User
}

// NewUserStore creates a store with no connected user
func NewUserStore() *UserStore {
	return &UserStore{}
}

// SetUser records the connected user
func (s *UserStore) SetUser(u model.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// ClearUser forgets the connected user
func (s *UserStore) ClearUser() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns the connected user, if any
func (s *UserStore) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// IsConnected reports whether a user is connected
func (s *UserStore) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsConnected
}

// UpdateBalance replaces the display balance of the connected user. It
// reports false when nobody is connected.
func (s *UserStore) UpdateBalance(balance string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return false
	}
	u := *s.user
	u.Balance = balance
	s.user = &u
	return true
}
