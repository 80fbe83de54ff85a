package listings

import (
	"strings"
	"time"
)

// CatalogSort defines a supported catalog ordering.
type CatalogSort string

const (
	SortPriceLow  CatalogSort = "price-low"
	SortPriceHigh CatalogSort = "price-high"
	SortYearNew   CatalogSort = "year-new"
	SortYearOld   CatalogSort = "year-old"
	// SortNewest orders by creation time descending and is the default for
	// absent or unrecognized sort keys.
	SortNewest CatalogSort = "newest"

	DefaultSearchLimit = 12
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options. Zero values mean
// "filter not applied": the boundary parses loose query parameters into this
// struct once, and malformed numeric input stays at zero.
type SearchParams struct {
	Search    string
	MinPrice  int64
	MaxPrice  int64
	MinYear   int
	MaxYear   int
	Brand     string
	Category  string
	Condition string
	FuelType  string
	Location  string
	Sort      CatalogSort
	Page      int
	Limit     int
}

// Normalized returns a sanitized copy of params. Whitespace-only search is
// treated as absent, negative bounds are dropped, page and limit are clamped.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Search = strings.TrimSpace(normalized.Search)
	normalized.Brand = strings.TrimSpace(normalized.Brand)
	normalized.Category = strings.TrimSpace(normalized.Category)
	normalized.Condition = strings.TrimSpace(normalized.Condition)
	normalized.FuelType = strings.TrimSpace(normalized.FuelType)
	normalized.Location = strings.TrimSpace(normalized.Location)
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice < 0 {
		normalized.MaxPrice = 0
	}
	if normalized.MinYear < 0 {
		normalized.MinYear = 0
	}
	if normalized.MaxYear < 0 {
		normalized.MaxYear = 0
	}
	if normalized.Page < 1 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = DefaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	switch normalized.Sort {
	case SortPriceLow, SortPriceHigh, SortYearNew, SortYearOld:
	default:
		normalized.Sort = SortNewest
	}
	return normalized
}

// Offset converts page/limit into a record offset.
func (p SearchParams) Offset() int {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return (page - 1) * limit
}

// Matches reports whether an already-normalized parameter set accepts the
// listing. Only active listings are ever eligible; filter combination is a
// logical AND, the free-text search matches title, description, brand or
// model case-insensitively.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil || l.Status != StatusActive {
		return false
	}
	if p.Search != "" && !matchesSearch(l, p.Search) {
		return false
	}
	if p.MinPrice > 0 && l.Price < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && l.Price > p.MaxPrice {
		return false
	}
	if p.MinYear > 0 && l.Year < p.MinYear {
		return false
	}
	if p.MaxYear > 0 && l.Year > p.MaxYear {
		return false
	}
	if p.Brand != "" && l.Brand != p.Brand {
		return false
	}
	if p.Category != "" && string(l.Category) != p.Category {
		return false
	}
	if p.Condition != "" && string(l.Condition) != p.Condition {
		return false
	}
	if p.FuelType != "" && string(l.FuelType) != p.FuelType {
		return false
	}
	if p.Location != "" && l.Location != p.Location {
		return false
	}
	return true
}

func matchesSearch(l *Listing, term string) bool {
	needle := strings.ToLower(term)
	for _, field := range []string{l.Title, l.Description, l.Brand, l.Model} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Less orders two listings under the given sort key. Every ordering breaks
// ties by creation time descending so pagination is deterministic.
func (s CatalogSort) Less(a, b *Listing) bool {
	switch s {
	case SortPriceLow:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case SortPriceHigh:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case SortYearNew:
		if a.Year != b.Year {
			return a.Year > b.Year
		}
	case SortYearOld:
		if a.Year != b.Year {
			return a.Year < b.Year
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SearchResult wraps one catalog page with the pre-pagination total.
type SearchResult struct {
	Items []*Listing
	Total int
}

// TotalPages derives the page count for the limit the search ran with.
func (r SearchResult) TotalPages(limit int) int {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return (r.Total + limit - 1) / limit
}

// Facets are the distinct filter values currently present among all active
// listings. They are computed from the full pool on purpose so filter
// controls keep showing every option while filters are applied.
type Facets struct {
	Brands     []string
	Categories []string
	Conditions []string
	FuelTypes  []string
	Locations  []string
}

// Stats describe the price/year bounds of the active pool, used to size
// range controls. Like Facets they ignore applied filters.
type Stats struct {
	MinPrice int64
	MaxPrice int64
	MinYear  int
	MaxYear  int
}

// DefaultStats are the fallback bounds when no active listing exists.
func DefaultStats(now time.Time) Stats {
	if now.IsZero() {
		now = time.Now()
	}
	return Stats{
		MinPrice: 0,
		MaxPrice: 1_000_000,
		MinYear:  2000,
		MaxYear:  now.Year(),
	}
}
