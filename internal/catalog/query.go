// Package catalog filters, orders and paginates token collections.
package catalog

import (
	"sort"
	"strings"

	"github.com/ecochain/token-catalog/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page is a cumulative "show more" view of a filtered collection
type Page struct {
	Items   []model.Token `json:"items"`
	Total   int           `json:"total"`
	Visible int           `json:"visible"`
	HasMore bool          `json:"hasMore"`
}

// IndexedPage is a page-number view of a filtered collection
type IndexedPage struct {
	Items      []model.Token `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// Filter returns the tokens whose name or symbol contains search,
// case-insensitively. The input order is preserved and the input is not modified.
func Filter(tokens []model.Token, search string) []model.Token {
	out := make([]model.Token, 0, len(tokens))
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, t := range tokens {
		if matches(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t model.Token, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Name), needle) ||
		strings.Contains(strings.ToLower(t.Symbol), needle)
}

// Sort orders tokens in place by key and order. Equal keys keep their
// relative order. Market caps that cannot be parsed always sort last.
func Sort(tokens []model.Token, key model.SortKey, order model.SortOrder) {
	if order == "" {
		order = key.DefaultOrder()
	}
	desc := order == model.SortDesc

	switch key {
	case model.SortByPrice:
		sort.SliceStable(tokens, func(i, j int) bool {
			if desc {
				return tokens[i].Price > tokens[j].Price
			}
			return tokens[i].Price < tokens[j].Price
		})

	case model.SortByMarketCap:
		caps := make(map[string]marketCap, len(tokens))
		for _, t := range tokens {
			if _, seen := caps[t.MarketCap]; !seen {
				v, ok := ParseDisplayAmount(t.MarketCap)
				caps[t.MarketCap] = marketCap{value: v, ok: ok}
			}
		}
		sort.SliceStable(tokens, func(i, j int) bool {
			a, b := caps[tokens[i].MarketCap], caps[tokens[j].MarketCap]
			if a.ok != b.ok {
				return a.ok
			}
			if desc {
				return a.value > b.value
			}
			return a.value < b.value
		})

	case model.SortByName:
		c := collate.New(language.English)
		sort.SliceStable(tokens, func(i, j int) bool {
			cmp := c.CompareString(tokens[i].Name, tokens[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})

	default:
		sort.SliceStable(tokens, func(i, j int) bool {
			if desc {
				return tokens[i].CreatedAt.After(tokens[j].CreatedAt)
			}
			return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
		})
	}
}

type marketCap struct {
	value float64
	ok    bool
}

// Apply filters and orders a copy of tokens according to f
func Apply(tokens []model.Token, f model.CatalogFilter) []model.Token {
	out := Filter(tokens, f.Search)
	Sort(out, f.SortBy, f.SortOrder)
	return out
}

// Query returns the first visible matches of tokens under f. A visible count
// of zero or less means one page. Counts beyond the result size clamp.
func Query(tokens []model.Token, f model.CatalogFilter, visible int) Page {
	if visible <= 0 {
		visible = pageSize(f)
	}

	ordered := Apply(tokens, f)
	n := visible
	if n > len(ordered) {
		n = len(ordered)
	}

	return Page{
		Items:   ordered[:n:n],
		Total:   len(ordered),
		Visible: n,
		HasMore: visible < len(ordered),
	}
}

// PageAt returns the 1-based page of tokens under f. Pages past the end are
// empty rather than an error.
func PageAt(tokens []model.Token, f model.CatalogFilter, page, limit int) IndexedPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = pageSize(f)
	}

	ordered := Apply(tokens, f)
	total := len(ordered)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return IndexedPage{
		Items:      ordered[start:end:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages is ceil(total/limit); zero when there are no results
func TotalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

func pageSize(f model.CatalogFilter) int {
	if f.PageSize > 0 {
		return f.PageSize
	}
	return model.DefaultPageSize
}
