package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainlistings "motomarket/internal/domain/listings"
)

// ListingRepository is an in-memory implementation backing tests and local
// runs without MongoDB.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	clone := *listing
	return &clone, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *listing
	r.items[listing.ID] = &clone
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ListingRepository) BySeller(ctx context.Context, seller domainlistings.SellerID) ([]*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0)
	for _, listing := range r.items {
		if listing.Seller == seller {
			clone := *listing
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return domainlistings.SortNewest.Less(out[i], out[j])
	})
	return out, nil
}

func (r *ListingRepository) Similar(ctx context.Context, ref *domainlistings.Listing, limit int) ([]*domainlistings.Listing, error) {
	if ref == nil || limit <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, limit)
	for _, listing := range r.items {
		if listing.ID == ref.ID || listing.Seller == ref.Seller {
			continue
		}
		if listing.Status != domainlistings.StatusActive {
			continue
		}
		if listing.Category != ref.Category && listing.Brand != ref.Brand {
			continue
		}
		clone := *listing
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return domainlistings.SortNewest.Less(out[i], out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ListingRepository) Featured(ctx context.Context, limit int) ([]*domainlistings.Listing, error) {
	if limit <= 0 {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0, limit)
	for _, listing := range r.items {
		if !listing.Featured || listing.Status != domainlistings.StatusActive {
			continue
		}
		clone := *listing
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		return domainlistings.SortNewest.Less(out[i], out[j])
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlistings.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.items[id]
	if !ok {
		return domainlistings.ErrNotFound
	}
	listing.Views++
	return nil
}

// Search filters, sorts and paginates in memory. The filter semantics live
// in SearchParams.Matches so every storage backend agrees on them.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}
		if !opts.Matches(listing) {
			continue
		}
		clone := *listing
		matches = append(matches, &clone)
	}

	sort.Slice(matches, func(i, j int) bool {
		return opts.Sort.Less(matches[i], matches[j])
	})

	total := len(matches)
	offset := opts.Offset()
	if offset > total {
		offset = total
	}
	end := offset + opts.Limit
	if end > total {
		end = total
	}
	return domainlistings.SearchResult{
		Items: matches[offset:end],
		Total: total,
	}, nil
}

// Facets collects distinct filter values across all active listings,
// ignoring any applied filters.
func (r *ListingRepository) Facets(ctx context.Context) (domainlistings.Facets, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brands := map[string]struct{}{}
	categories := map[string]struct{}{}
	conditions := map[string]struct{}{}
	fuelTypes := map[string]struct{}{}
	locations := map[string]struct{}{}
	for _, listing := range r.items {
		if listing.Status != domainlistings.StatusActive {
			continue
		}
		brands[listing.Brand] = struct{}{}
		categories[string(listing.Category)] = struct{}{}
		conditions[string(listing.Condition)] = struct{}{}
		fuelTypes[string(listing.FuelType)] = struct{}{}
		locations[listing.Location] = struct{}{}
	}
	return domainlistings.Facets{
		Brands:     sortedKeys(brands),
		Categories: sortedKeys(categories),
		Conditions: sortedKeys(conditions),
		FuelTypes:  sortedKeys(fuelTypes),
		Locations:  sortedKeys(locations),
	}, nil
}

// Stats aggregates price/year bounds across all active listings, falling
// back to the default bounds when the pool is empty.
func (r *ListingRepository) Stats(ctx context.Context) (domainlistings.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domainlistings.Stats
	seen := false
	for _, listing := range r.items {
		if listing.Status != domainlistings.StatusActive {
			continue
		}
		if !seen {
			stats = domainlistings.Stats{
				MinPrice: listing.Price,
				MaxPrice: listing.Price,
				MinYear:  listing.Year,
				MaxYear:  listing.Year,
			}
			seen = true
			continue
		}
		if listing.Price < stats.MinPrice {
			stats.MinPrice = listing.Price
		}
		if listing.Price > stats.MaxPrice {
			stats.MaxPrice = listing.Price
		}
		if listing.Year < stats.MinYear {
			stats.MinYear = listing.Year
		}
		if listing.Year > stats.MaxYear {
			stats.MaxYear = listing.Year
		}
	}
	if !seen {
		return domainlistings.DefaultStats(time.Now()), nil
	}
	return stats, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		if key == "" {
			continue
		}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
