// Package store holds the session-wide token collection and filter state
// shared by the listing and detail views.
package store

import (
	"sync"

	"github.com/ecochain/token-catalog/internal/catalog"
	"github.com/ecochain/token-catalog/internal/model"
)

// TokenStore owns the fetched token collection and the active catalog filter.
// All mutations are atomic replacements visible to every reader on return.
type TokenStore struct {
	mu      sync.RWMutex
	tokens  []model.Token
	filter  model.CatalogFilter
	loading bool
	err     error
}

// NewTokenStore creates an empty store with the default filter
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: []model.Token{},
		filter: model.DefaultFilter(),
	}
}

// SetTokens replaces the whole collection
func (s *TokenStore) SetTokens(tokens []model.Token) {
	next := make([]model.Token, len(tokens))
	copy(next, tokens)

	s.mu.Lock()
	s.tokens = next
	s.mu.Unlock()
}

// AddTokens appends items to the collection. Identifiers are not deduplicated;
// appending a token that is already present is a caller error.
func (s *TokenStore) AddTokens(items ...model.Token) {
	if len(items) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Token, 0, len(s.tokens)+len(items))
	next = append(next, s.tokens...)
	next = append(next, items...)
	s.tokens = next
}

// SetFilters shallow-merges patch into the active filter and returns the result
func (s *TokenStore) SetFilters(patch model.FilterPatch) model.CatalogFilter {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = patch.Apply(s.filter)
	return s.filter
}

// SetLoading records whether a fetch is outstanding
func (s *TokenStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// SetError records the last fetch error; nil clears it
func (s *TokenStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Tokens returns a copy of the collection
func (s *TokenStore) Tokens() []model.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Filters returns the active filter
func (s *TokenStore) Filters() model.CatalogFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Loading reports whether a fetch is outstanding
func (s *TokenStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last recorded fetch error
func (s *TokenStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Len returns the number of tokens held
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Find returns the first token with the given id
func (s *TokenStore) Find(id string) (model.Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.ID == id {
			return t, true
		}
	}
	return model.Token{}, false
}

// View runs a catalog query over the current collection and filter
func (s *TokenStore) View(visible int) catalog.Page {
	s.mu.RLock()
	tokens := s.tokens
	filter := s.filter
	s.mu.RUnlock()

	// catalog.Query copies before sorting so the shared slice is never reordered
	return catalog.Query(tokens, filter, visible)
}
