package model

// SortKey selects the ordering of a catalog listing
type SortKey string

const (
	SortByPrice     SortKey = "price"
	SortByMarketCap SortKey = "marketCap"
	SortByName      SortKey = "name"
	SortByCreatedAt SortKey = "createdAt"
)

// SortOrder selects the direction of a catalog listing
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPageSize is the number of tokens revealed per "show more"
const DefaultPageSize = 15

// ParseSortKey maps a query value onto a known sort key, falling back to creation time
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByPrice, SortByMarketCap, SortByName, SortByCreatedAt:
		return SortKey(s)
	case "market_cap", "marketcap":
		return SortByMarketCap
	case "newest", "created_at":
		return SortByCreatedAt
	default:
		return SortByCreatedAt
	}
}

// DefaultOrder returns the natural direction of a sort key
func (k SortKey) DefaultOrder() SortOrder {
	if k == SortByName {
		return SortAsc
	}
	return SortDesc
}

// ParseSortOrder maps a query value onto a sort order; empty or unknown values
// resolve to the key's natural direction
func ParseSortOrder(s string, key SortKey) SortOrder {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s)
	default:
		return key.DefaultOrder()
	}
}

// CatalogFilter holds the active search and ordering state of a listing
type CatalogFilter struct {
	Search    string    `json:"search"`
	SortBy    SortKey   `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
	PageSize  int       `json:"pageSize"`
}

// DefaultFilter returns the filter a fresh session starts with
func DefaultFilter() CatalogFilter {
	return CatalogFilter{
		Search:    "",
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		PageSize:  DefaultPageSize,
	}
}

// FilterPatch is a partial CatalogFilter; nil fields are left untouched on merge
type FilterPatch struct {
	Search    *string
	SortBy    *SortKey
	SortOrder *SortOrder
	PageSize  *int
}

// Apply shallow-merges the patch into f and returns the result
func (p FilterPatch) Apply(f CatalogFilter) CatalogFilter {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	if p.PageSize != nil {
		f.PageSize = *p.PageSize
	}
	return f
}
