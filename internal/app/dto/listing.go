package dto

import (
	"time"

	domainlistings "motomarket/internal/domain/listings"
)

// ListingCatalog is one page of the public catalog together with filter
// metadata for the search controls.
type ListingCatalog struct {
	Listings   []ListingCard  `json:"listings"`
	TotalCount int            `json:"total_count"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Filters    CatalogFilters `json:"filters"`
	Facets     CatalogFacets  `json:"facets"`
	Stats      CatalogStats   `json:"stats"`
}

// ListingCard is a lightweight representation for catalog cards.
type ListingCard struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Price        int64     `json:"price"`
	Mileage      int64     `json:"mileage"`
	Condition    string    `json:"condition"`
	Category     string    `json:"category"`
	FuelType     string    `json:"fuel_type"`
	Location     string    `json:"location"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Status       string    `json:"status"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListingDetail is the full listing payload for the detail page.
type ListingDetail struct {
	ListingCard
	SellerID         string        `json:"seller_id"`
	Description      string        `json:"description"`
	EngineCapacityCC int           `json:"engine_capacity_cc"`
	Color            string        `json:"color"`
	Features         []string      `json:"features"`
	Photos           []string      `json:"photos"`
	Views            int64         `json:"views"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Similar          []ListingCard `json:"similar"`
}

// CatalogFilters echoes back the applied filters.
type CatalogFilters struct {
	Search    string `json:"search,omitempty"`
	MinPrice  int64  `json:"min_price,omitempty"`
	MaxPrice  int64  `json:"max_price,omitempty"`
	MinYear   int    `json:"min_year,omitempty"`
	MaxYear   int    `json:"max_year,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Category  string `json:"category,omitempty"`
	Condition string `json:"condition,omitempty"`
	FuelType  string `json:"fuel_type,omitempty"`
	Location  string `json:"location,omitempty"`
	Sort      string `json:"sort"`
}

// CatalogFacets lists the distinct filter values of the whole active pool.
type CatalogFacets struct {
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
	Conditions []string `json:"conditions"`
	FuelTypes  []string `json:"fuel_types"`
	Locations  []string `json:"locations"`
}

// CatalogStats are the price/year bounds used to size range controls.
type CatalogStats struct {
	MinPrice int64 `json:"min_price"`
	MaxPrice int64 `json:"max_price"`
	MinYear  int   `json:"min_year"`
	MaxYear  int   `json:"max_year"`
}

// MapCatalog builds the catalog page DTO from a search result plus the
// pool-wide facets and stats.
func MapCatalog(
	result domainlistings.SearchResult,
	params domainlistings.SearchParams,
	facets domainlistings.Facets,
	stats domainlistings.Stats,
) ListingCatalog {
	normalized := params.Normalized()
	items := make([]ListingCard, 0, len(result.Items))
	for _, listing := range result.Items {
		items = append(items, MapListingCard(listing))
	}
	return ListingCatalog{
		Listings:   items,
		TotalCount: result.Total,
		TotalPages: result.TotalPages(normalized.Limit),
		Page:       normalized.Page,
		Limit:      normalized.Limit,
		Filters: CatalogFilters{
			Search:    normalized.Search,
			MinPrice:  normalized.MinPrice,
			MaxPrice:  normalized.MaxPrice,
			MinYear:   normalized.MinYear,
			MaxYear:   normalized.MaxYear,
			Brand:     normalized.Brand,
			Category:  normalized.Category,
			Condition: normalized.Condition,
			FuelType:  normalized.FuelType,
			Location:  normalized.Location,
			Sort:      string(normalized.Sort),
		},
		Facets: CatalogFacets{
			Brands:     append([]string(nil), facets.Brands...),
			Categories: append([]string(nil), facets.Categories...),
			Conditions: append([]string(nil), facets.Conditions...),
			FuelTypes:  append([]string(nil), facets.FuelTypes...),
			Locations:  append([]string(nil), facets.Locations...),
		},
		Stats: CatalogStats{
			MinPrice: stats.MinPrice,
			MaxPrice: stats.MaxPrice,
			MinYear:  stats.MinYear,
			MaxYear:  stats.MaxYear,
		},
	}
}

// MapListingCard copies domain data for frontend consumption.
func MapListingCard(listing *domainlistings.Listing) ListingCard {
	if listing == nil {
		return ListingCard{}
	}
	return ListingCard{
		ID:           string(listing.ID),
		Title:        listing.Title,
		Brand:        listing.Brand,
		Model:        listing.Model,
		Year:         listing.Year,
		Price:        listing.Price,
		Mileage:      listing.Mileage,
		Condition:    string(listing.Condition),
		Category:     string(listing.Category),
		FuelType:     string(listing.FuelType),
		Location:     listing.Location,
		ThumbnailURL: listing.ThumbnailURL,
		Status:       string(listing.Status),
		Featured:     listing.Featured,
		CreatedAt:    listing.CreatedAt,
	}
}

func MapListingDetail(listing *domainlistings.Listing, similar []*domainlistings.Listing) ListingDetail {
	if listing == nil {
		return ListingDetail{}
	}
	related := make([]ListingCard, 0, len(similar))
	for _, item := range similar {
		related = append(related, MapListingCard(item))
	}
	return ListingDetail{
		ListingCard:      MapListingCard(listing),
		SellerID:         string(listing.Seller),
		Description:      listing.Description,
		EngineCapacityCC: listing.EngineCapacityCC,
		Color:            listing.Color,
		Features:         append([]string(nil), listing.Features...),
		Photos:           append([]string(nil), listing.Photos...),
		Views:            listing.Views,
		UpdatedAt:        listing.UpdatedAt,
		Similar:          related,
	}
}
