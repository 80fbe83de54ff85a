package catalog

import (
	"context"
	"errors"
	"log/slog"

	"motomarket/internal/app/dto"
	domainlistings "motomarket/internal/domain/listings"
)

const (
	similarLimit         = 4
	defaultFeaturedLimit = 6
	maxFeaturedLimit     = 24
)

// MetaCache holds the pool-wide facets and stats between catalog requests.
// Both values ignore applied filters, so one cached copy serves every query.
type MetaCache interface {
	GetMeta(ctx context.Context) (domainlistings.Facets, domainlistings.Stats, bool)
	SetMeta(ctx context.Context, facets domainlistings.Facets, stats domainlistings.Stats) error
	InvalidateMeta(ctx context.Context) error
}

// Service answers public catalog queries: search pages, listing details and
// the filter metadata around them.
type Service struct {
	Listings domainlistings.Repository
	Cache    MetaCache
	Logger   *slog.Logger
}

type DetailResult struct {
	Listing *domainlistings.Listing
	Similar []*domainlistings.Listing
}

// Search runs one catalog query and assembles the full page payload.
func (s *Service) Search(ctx context.Context, params domainlistings.SearchParams) (dto.ListingCatalog, error) {
	if s.Listings == nil {
		return dto.ListingCatalog{}, errors.New("catalog: listing repository required")
	}
	normalized := params.Normalized()
	result, err := s.Listings.Search(ctx, normalized)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	facets, stats, err := s.meta(ctx)
	if err != nil {
		return dto.ListingCatalog{}, err
	}
	return dto.MapCatalog(result, normalized, facets, stats), nil
}

// Featured returns the home-page strip of promoted listings.
func (s *Service) Featured(ctx context.Context, limit int) ([]dto.ListingCard, error) {
	if s.Listings == nil {
		return nil, errors.New("catalog: listing repository required")
	}
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	if limit > maxFeaturedLimit {
		limit = maxFeaturedLimit
	}
	items, err := s.Listings.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}
	cards := make([]dto.ListingCard, 0, len(items))
	for _, listing := range items {
		cards = append(cards, dto.MapListingCard(listing))
	}
	return cards, nil
}

// Detail loads one listing with its related cards and bumps the view
// counter. Counting failures are logged, not surfaced.
func (s *Service) Detail(ctx context.Context, id domainlistings.ListingID) (*DetailResult, error) {
	if s.Listings == nil {
		return nil, errors.New("catalog: listing repository required")
	}
	listing, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Listings.IncrementViews(ctx, id); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("view counter update failed", "listing_id", id, "error", err)
		}
	} else {
		listing.Views++
	}
	similar, err := s.Listings.Similar(ctx, listing, similarLimit)
	if err != nil {
		return nil, err
	}
	return &DetailResult{Listing: listing, Similar: similar}, nil
}

// InvalidateMeta drops the cached facets/stats after a listing write.
func (s *Service) InvalidateMeta(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.InvalidateMeta(ctx); err != nil && s.Logger != nil {
		s.Logger.Warn("catalog meta invalidation failed", "error", err)
	}
}

func (s *Service) meta(ctx context.Context) (domainlistings.Facets, domainlistings.Stats, error) {
	if s.Cache != nil {
		if facets, stats, ok := s.Cache.GetMeta(ctx); ok {
			return facets, stats, nil
		}
	}
	facets, err := s.Listings.Facets(ctx)
	if err != nil {
		return domainlistings.Facets{}, domainlistings.Stats{}, err
	}
	stats, err := s.Listings.Stats(ctx)
	if err != nil {
		return domainlistings.Facets{}, domainlistings.Stats{}, err
	}
	if s.Cache != nil {
		if err := s.Cache.SetMeta(ctx, facets, stats); err != nil && s.Logger != nil {
			s.Logger.Warn("catalog meta cache write failed", "error", err)
		}
	}
	return facets, stats, nil
}
