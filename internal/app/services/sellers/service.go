package sellers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	domainlistings "motomarket/internal/domain/listings"
)

var ErrNotOwner = errors.New("sellers: caller does not own this listing")

// Uploader stores photo content and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// MetaInvalidator drops cached catalog metadata after a listing write.
type MetaInvalidator interface {
	InvalidateMeta(ctx context.Context) error
}

// Service handles the seller side of the marketplace: creating, editing and
// retiring listings.
type Service struct {
	Listings domainlistings.Repository
	Photos   Uploader
	Cache    MetaInvalidator
	Logger   *slog.Logger
}

type ListingInput struct {
	Title            string
	Brand            string
	Model            string
	Year             int
	Price            int64
	Mileage          int64
	EngineCapacityCC int
	Description      string
	Condition        string
	Color            string
	FuelType         string
	Category         string
	Location         string
	Features         []string
	Draft            bool
	Featured         bool
}

func (s *Service) Create(ctx context.Context, seller domainlistings.SellerID, input ListingInput) (*domainlistings.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("sellers: listing repository required")
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:               domainlistings.ListingID(uuid.NewString()),
		Seller:           seller,
		Title:            input.Title,
		Brand:            input.Brand,
		Model:            input.Model,
		Year:             input.Year,
		Price:            input.Price,
		Mileage:          input.Mileage,
		EngineCapacityCC: input.EngineCapacityCC,
		Description:      input.Description,
		Condition:        domainlistings.Condition(input.Condition),
		Color:            input.Color,
		FuelType:         domainlistings.FuelType(input.FuelType),
		Category:         domainlistings.Category(input.Category),
		Location:         input.Location,
		Features:         input.Features,
		Draft:            input.Draft,
		Featured:         input.Featured,
		Now:              time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateMeta(ctx)
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", listing.ID, "seller_id", seller, "status", listing.Status)
	}
	return listing, nil
}

func (s *Service) Update(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID, input ListingInput) (*domainlistings.Listing, error) {
	listing, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	err = listing.UpdateAttributes(domainlistings.UpdateParams{
		Title:            input.Title,
		Brand:            input.Brand,
		Model:            input.Model,
		Year:             input.Year,
		Price:            input.Price,
		Mileage:          input.Mileage,
		EngineCapacityCC: input.EngineCapacityCC,
		Description:      input.Description,
		Condition:        domainlistings.Condition(input.Condition),
		Color:            input.Color,
		FuelType:         domainlistings.FuelType(input.FuelType),
		Category:         domainlistings.Category(input.Category),
		Location:         input.Location,
		Features:         input.Features,
		Photos:           listing.Photos,
		Featured:         input.Featured,
		Now:              time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateMeta(ctx)
	return listing, nil
}

func (s *Service) MarkSold(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	listing, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := listing.MarkSold(time.Now()); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateMeta(ctx)
	if s.Logger != nil {
		s.Logger.Info("listing sold", "listing_id", listing.ID, "seller_id", seller)
	}
	return listing, nil
}

func (s *Service) Publish(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	listing, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := listing.Publish(time.Now()); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateMeta(ctx)
	return listing, nil
}

func (s *Service) Deactivate(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	listing, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	if err := listing.Deactivate(time.Now()); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidateMeta(ctx)
	return listing, nil
}

func (s *Service) Delete(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID) error {
	if _, err := s.owned(ctx, seller, id); err != nil {
		return err
	}
	if err := s.Listings.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateMeta(ctx)
	return nil
}

func (s *Service) BySeller(ctx context.Context, seller domainlistings.SellerID) ([]*domainlistings.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("sellers: listing repository required")
	}
	return s.Listings.BySeller(ctx, seller)
}

// AddPhoto uploads one photo and appends its URL to the listing. The first
// photo becomes the thumbnail.
func (s *Service) AddPhoto(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID, filename string, content io.Reader) (*domainlistings.Listing, error) {
	if s.Photos == nil {
		return nil, errors.New("sellers: photo uploader required")
	}
	listing, err := s.owned(ctx, seller, id)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType := mime.TypeByExtension(ext)
	key := fmt.Sprintf("listings/%s/%s%s", id, uuid.NewString(), ext)
	url, err := s.Photos.Upload(ctx, key, content, contentType)
	if err != nil {
		return nil, err
	}
	listing.Photos = append(listing.Photos, url)
	if listing.ThumbnailURL == "" {
		listing.ThumbnailURL = url
	}
	listing.UpdatedAt = time.Now().UTC()
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing photo uploaded", "listing_id", id, "url", url)
	}
	return listing, nil
}

func (s *Service) owned(ctx context.Context, seller domainlistings.SellerID, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("sellers: listing repository required")
	}
	listing, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(seller) {
		return nil, ErrNotOwner
	}
	return listing, nil
}

func (s *Service) invalidateMeta(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.InvalidateMeta(ctx); err != nil && s.Logger != nil {
		s.Logger.Warn("catalog meta invalidation failed", "error", err)
	}
}
