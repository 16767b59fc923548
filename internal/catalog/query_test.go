package catalog

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ecochain/token-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func token(id, name, symbol string, price float64, marketCap string, age time.Duration) model.Token {
	return model.Token{
		ID:        id,
		Name:      name,
		Symbol:    symbol,
		Price:     price,
		MarketCap: marketCap,
		CreatedAt: baseTime.Add(-age),
	}
}

func fiveTokens() []model.Token {
	return []model.Token{
		token("1", "My New Token", "MNT", 0.048, "$4.4k", 20*time.Second),
		token("2", "EcoChain Token", "ECO", 0.125, "$12.8k", 2*time.Minute),
		token("3", "Green Energy Coin", "GEC", 0.0025, "$2.1k", time.Hour),
		token("4", "Blockchain Revolution", "BRV", 0.087, "$8.7k", 2*time.Hour),
		token("5", "NFT Gaming Coin", "NGC", 0.234, "$23.4k", 3*time.Hour),
	}
}

func ids(tokens []model.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.ID
	}
	return out
}

func manyTokens(n int) []model.Token {
	out := make([]model.Token, n)
	for i := range out {
		out[i] = token(fmt.Sprint(i+1), fmt.Sprintf("Token %02d", i+1), fmt.Sprintf("TK%c", 'A'+i%26), float64(i), "$1", time.Duration(i)*time.Minute)
	}
	return out
}

func TestFilter_SearchEcoMatchesExactlyOne(t *testing.T) {
	got := Filter(fiveTokens(), "eco")

	require.Len(t, got, 1)
	assert.Equal(t, "EcoChain Token", got[0].Name)
}

func TestFilter_MatchesSymbolCaseInsensitively(t *testing.T) {
	got := Filter(fiveTokens(), "brv")

	assert.Equal(t, []string{"4"}, ids(got))
}

func TestFilter_ResultIsSubsetContainingSearch(t *testing.T) {
	tokens := fiveTokens()
	for _, search := range []string{"", "o", "COIN", "token", "zz", "g"} {
		got := Filter(tokens, search)
		needle := strings.ToLower(search)
		for _, tk := range got {
			assert.True(t,
				strings.Contains(strings.ToLower(tk.Name), needle) || strings.Contains(strings.ToLower(tk.Symbol), needle),
				"search %q returned %q", search, tk.Name)
			assert.Contains(t, ids(tokens), tk.ID)
		}
	}
}

func TestSort_MarketCapDescendingByNumericValue(t *testing.T) {
	tokens := []model.Token{
		{ID: "a", MarketCap: "$2,000"},
		{ID: "b", MarketCap: "$10"},
		{ID: "c", MarketCap: "$300"},
	}

	Sort(tokens, model.SortByMarketCap, model.SortDesc)

	var caps []string
	for _, tk := range tokens {
		caps = append(caps, tk.MarketCap)
	}
	assert.Equal(t, []string{"$2,000", "$300", "$10"}, caps)
}

func TestSort_MalformedMarketCapSortsLast(t *testing.T) {
	tokens := []model.Token{
		{ID: "bad", MarketCap: "n/a"},
		{ID: "zero", MarketCap: "$0"},
		{ID: "big", MarketCap: "$1,234.50"},
	}

	Sort(tokens, model.SortByMarketCap, model.SortDesc)
	assert.Equal(t, []string{"big", "zero", "bad"}, ids(tokens))

	Sort(tokens, model.SortByMarketCap, model.SortAsc)
	assert.Equal(t, []string{"zero", "big", "bad"}, ids(tokens))
}

func TestSort_PriceDescendingIsStableOnTies(t *testing.T) {
	tokens := []model.Token{
		{ID: "1", Price: 1},
		{ID: "2", Price: 5},
		{ID: "3", Price: 1},
		{ID: "4", Price: 5},
	}

	Sort(tokens, model.SortByPrice, model.SortDesc)

	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(tokens))
}

func TestSort_NameAscending(t *testing.T) {
	tokens := fiveTokens()

	Sort(tokens, model.SortByName, "")

	assert.Equal(t, []string{"4", "2", "3", "1", "5"}, ids(tokens))
}

func TestSort_DefaultIsNewestFirst(t *testing.T) {
	tokens := fiveTokens()
	tokens[0], tokens[4] = tokens[4], tokens[0]

	Sort(tokens, model.SortByCreatedAt, "")

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(tokens))
}

func TestQuery_PageSizeLargerThanCatalog(t *testing.T) {
	page := Query(manyTokens(12), model.DefaultFilter(), 15)

	assert.Len(t, page.Items, 12)
	assert.Equal(t, 12, page.Total)
	assert.False(t, page.HasMore)
}

func TestQuery_EmptyCollection(t *testing.T) {
	page := Query(nil, model.DefaultFilter(), 0)

	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Equal(t, 0, page.Total)
}

func TestQuery_DoesNotReorderInput(t *testing.T) {
	tokens := fiveTokens()
	before := ids(tokens)

	f := model.DefaultFilter()
	f.SortBy = model.SortByPrice
	Query(tokens, f, 0)

	assert.Equal(t, before, ids(tokens))
}

func TestQuery_EarlierPagesArePrefixesOfLaterPages(t *testing.T) {
	tokens := manyTokens(40)
	f := model.DefaultFilter()

	prev := Query(tokens, f, f.PageSize)
	for k := 1; k <= 3; k++ {
		next := Query(tokens, f, f.PageSize*(k+1))
		assert.Equal(t, ids(prev.Items), ids(next.Items[:len(prev.Items)]))
		prev = next
	}
	assert.Len(t, prev.Items, 40)
	assert.False(t, prev.HasMore)
}

func TestPageAt_ClampsOutOfRangePage(t *testing.T) {
	tokens := manyTokens(20)

	page := PageAt(tokens, model.DefaultFilter(), 5, 15)

	assert.Empty(t, page.Items)
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestPageAt_SecondPage(t *testing.T) {
	tokens := manyTokens(20)
	f := model.DefaultFilter()
	f.SortBy = model.SortByPrice

	page := PageAt(tokens, f, 2, 15)

	require.Len(t, page.Items, 5)
	assert.Equal(t, "5", page.Items[0].ID)
	assert.Equal(t, 2, page.Page)
}

func TestParseDisplayAmount(t *testing.T) {
	cases := map[string]struct {
		value float64
		ok    bool
	}{
		"$1,234.50":     {1234.50, true},
		"$385,069,594":  {385069594, true},
		"$4.4k":         {4.4, true},
		"":              {0, false},
		"n/a":           {0, false},
		"1.2.3":         {0, false},
		"1,234.56 USDT": {1234.56, true},
	}

	for in, want := range cases {
		got, ok := ParseDisplayAmount(in)
		assert.Equal(t, want.ok, ok, in)
		assert.InDelta(t, want.value, got, 1e-9, in)
	}
}

func TestRaisePercentage(t *testing.T) {
	assert.Equal(t, "150%", RaisePercentage("$3,600,000", "$2,400,000"))
	assert.Equal(t, "0%", RaisePercentage("$7.5K", ""))
	assert.Equal(t, "0%", RaisePercentage("$10", "$0"))
}
