package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ecochain/token-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTokens(n int) []model.Token {
	out := make([]model.Token, n)
	for i := range out {
		out[i] = model.Token{ID: fmt.Sprint(i + 1), Name: fmt.Sprintf("Token %d", i+1), Symbol: "TK"}
	}
	return out
}

func TestTokenStore_SetTokensReplacesCollection(t *testing.T) {
	s := NewTokenStore()
	s.SetTokens(sampleTokens(3))
	s.SetTokens(sampleTokens(2))

	assert.Equal(t, 2, s.Len())
}

func TestTokenStore_SetTokensCopiesInput(t *testing.T) {
	s := NewTokenStore()
	in := sampleTokens(1)
	s.SetTokens(in)

	in[0].Name = "mutated"

	got, ok := s.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Token 1", got.Name)
}

func TestTokenStore_AddTokensKeepsDuplicates(t *testing.T) {
	s := NewTokenStore()
	s.SetTokens(sampleTokens(2))

	s.AddTokens(model.Token{ID: "1", Name: "again"})

	assert.Equal(t, 3, s.Len())
	first, ok := s.Find("1")
	require.True(t, ok)
	assert.Equal(t, "Token 1", first.Name)
}

func TestTokenStore_SetFiltersMergesShallowly(t *testing.T) {
	s := NewTokenStore()
	search := "eco"
	s.SetFilters(model.FilterPatch{Search: &search})

	key := model.SortByPrice
	f := s.SetFilters(model.FilterPatch{SortBy: &key})

	assert.Equal(t, "eco", f.Search)
	assert.Equal(t, model.SortByPrice, f.SortBy)
	assert.Equal(t, model.DefaultPageSize, f.PageSize)
	assert.Equal(t, f, s.Filters())
}

func TestTokenStore_ViewUsesCurrentFilter(t *testing.T) {
	s := NewTokenStore()
	s.SetTokens([]model.Token{
		{ID: "1", Name: "EcoChain Token", Symbol: "ECO"},
		{ID: "2", Name: "Green Energy Coin", Symbol: "GEC"},
	})
	search := "eco"
	s.SetFilters(model.FilterPatch{Search: &search})

	page := s.View(0)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, []string{"1", "2"}, []string{s.Tokens()[0].ID, s.Tokens()[1].ID})
}

func TestTokenStore_LoadingAndError(t *testing.T) {
	s := NewTokenStore()
	s.SetLoading(true)
	s.SetError(errors.New("catalog unavailable"))

	assert.True(t, s.Loading())
	assert.EqualError(t, s.Err(), "catalog unavailable")

	s.SetError(nil)
	assert.NoError(t, s.Err())
}

func TestTokenStore_ConcurrentWritersAndReaders(t *testing.T) {
	s := NewTokenStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.AddTokens(model.Token{ID: fmt.Sprint(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = s.View(0)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
}

func TestUserStore_Lifecycle(t *testing.T) {
	s := NewUserStore()
	assert.False(t, s.UpdateBalance("1.00 USDT"))

	s.SetUser(model.User{Address: "0xabc", Balance: model.DefaultBalance, IsConnected: true})
	assert.True(t, s.IsConnected())
	assert.True(t, s.UpdateBalance("12.50 USDT"))

	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "12.50 USDT", u.Balance)

	s.ClearUser()
	_, ok = s.User()
	assert.False(t, ok)
	assert.False(t, s.IsConnected())
}
