package listings

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrBrandRequired    = errors.New("listings: brand is required")
	ErrModelRequired    = errors.New("listings: model is required")
	ErrLocationRequired = errors.New("listings: location is required")
	ErrYearOutOfRange   = errors.New("listings: year must be between 1900 and next year")
	ErrNegativePrice    = errors.New("listings: price must be non-negative")
	ErrNegativeMileage  = errors.New("listings: mileage must be non-negative")
	ErrNegativeEngine   = errors.New("listings: engine capacity must be non-negative")
	ErrInvalidCondition = errors.New("listings: unknown condition")
	ErrInvalidCategory  = errors.New("listings: unknown category")
	ErrInvalidFuelType  = errors.New("listings: unknown fuel type")
	ErrInvalidState     = errors.New("listings: invalid status transition")
	ErrNotFound         = errors.New("listings: not found")
)

type ListingID string
type SellerID string

// Status is the single canonical availability vocabulary for a listing.
// Only active listings are visible in the public catalog.
type Status string

const (
	StatusActive   Status = "active"
	StatusSold     Status = "sold"
	StatusDraft    Status = "draft"
	StatusInactive Status = "inactive"
)

type Condition string

const (
	ConditionNew       Condition = "New"
	ConditionLikeNew   Condition = "Like New"
	ConditionExcellent Condition = "Excellent"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
	ConditionPoor      Condition = "Poor"
)

type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
	FuelOther    FuelType = "Other"
)

type Category string

const (
	CategorySport    Category = "Sport"
	CategoryCruiser  Category = "Cruiser"
	CategoryTouring  Category = "Touring"
	CategoryOffRoad  Category = "Off-road"
	CategoryScooter  Category = "Scooter"
	CategoryElectric Category = "Electric"
	CategoryVintage  Category = "Vintage"
	CategoryOther    Category = "Other"
)

// Listing is a motorcycle offered for sale.
type Listing struct {
	ID               ListingID
	Seller           SellerID
	Title            string
	Brand            string
	Model            string
	Year             int
	Price            int64
	Mileage          int64
	EngineCapacityCC int
	Description      string
	Condition        Condition
	Color            string
	FuelType         FuelType
	Category         Category
	Location         string
	Features         []string
	Photos           []string
	ThumbnailURL     string
	Status           Status
	Featured         bool
	Views            int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Repository is the persistence port for listings. Search, Facets and Stats
// together form the catalog query surface.
type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	BySeller(ctx context.Context, seller SellerID) ([]*Listing, error)
	// Similar returns other active listings in the same category or brand,
	// excluding the listing itself and everything from its seller.
	Similar(ctx context.Context, ref *Listing, limit int) ([]*Listing, error)
	IncrementViews(ctx context.Context, id ListingID) error
	// Featured returns up to limit active listings carrying the featured
	// flag, newest first.
	Featured(ctx context.Context, limit int) ([]*Listing, error)

	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	// Facets lists distinct filterable values among all active listings,
	// regardless of any applied filters.
	Facets(ctx context.Context) (Facets, error)
	// Stats aggregates price/year bounds among all active listings,
	// regardless of any applied filters.
	Stats(ctx context.Context) (Stats, error)
}

type CreateParams struct {
	ID               ListingID
	Seller           SellerID
	Title            string
	Brand            string
	Model            string
	Year             int
	Price            int64
	Mileage          int64
	EngineCapacityCC int
	Description      string
	Condition        Condition
	Color            string
	FuelType         FuelType
	Category         Category
	Location         string
	Features         []string
	Photos           []string
	Draft            bool
	Featured         bool
	Now              time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listings: id is required")
	}
	if strings.TrimSpace(string(params.Seller)) == "" {
		return nil, errors.New("listings: seller is required")
	}
	if err := validateAttributes(params.Title, params.Brand, params.Model, params.Location, params.Year, params.Price, params.Mileage, params.EngineCapacityCC, params.Now); err != nil {
		return nil, err
	}
	condition, err := normalizeCondition(params.Condition)
	if err != nil {
		return nil, err
	}
	category, err := normalizeCategory(params.Category)
	if err != nil {
		return nil, err
	}
	fuel, err := normalizeFuelType(params.FuelType)
	if err != nil {
		return nil, err
	}
	status := StatusActive
	if params.Draft {
		status = StatusDraft
	}
	color := strings.TrimSpace(params.Color)
	if color == "" {
		color = "Unspecified"
	}
	photos := append([]string(nil), params.Photos...)
	thumbnail := ""
	if len(photos) > 0 {
		thumbnail = photos[0]
	}
	now := params.Now.UTC()

	return &Listing{
		ID:               params.ID,
		Seller:           params.Seller,
		Title:            strings.TrimSpace(params.Title),
		Brand:            strings.TrimSpace(params.Brand),
		Model:            strings.TrimSpace(params.Model),
		Year:             params.Year,
		Price:            params.Price,
		Mileage:          params.Mileage,
		EngineCapacityCC: params.EngineCapacityCC,
		Description:      strings.TrimSpace(params.Description),
		Condition:        condition,
		Color:            color,
		FuelType:         fuel,
		Category:         category,
		Location:         strings.TrimSpace(params.Location),
		Features:         append([]string(nil), params.Features...),
		Photos:           photos,
		ThumbnailURL:     thumbnail,
		Status:           status,
		Featured:         params.Featured,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

type UpdateParams struct {
	Title            string
	Brand            string
	Model            string
	Year             int
	Price            int64
	Mileage          int64
	EngineCapacityCC int
	Description      string
	Condition        Condition
	Color            string
	FuelType         FuelType
	Category         Category
	Location         string
	Features         []string
	Photos           []string
	Featured         bool
	Now              time.Time
}

func (l *Listing) UpdateAttributes(params UpdateParams) error {
	if err := validateAttributes(params.Title, params.Brand, params.Model, params.Location, params.Year, params.Price, params.Mileage, params.EngineCapacityCC, params.Now); err != nil {
		return err
	}
	condition, err := normalizeCondition(params.Condition)
	if err != nil {
		return err
	}
	category, err := normalizeCategory(params.Category)
	if err != nil {
		return err
	}
	fuel, err := normalizeFuelType(params.FuelType)
	if err != nil {
		return err
	}

	l.Title = strings.TrimSpace(params.Title)
	l.Brand = strings.TrimSpace(params.Brand)
	l.Model = strings.TrimSpace(params.Model)
	l.Year = params.Year
	l.Price = params.Price
	l.Mileage = params.Mileage
	l.EngineCapacityCC = params.EngineCapacityCC
	l.Description = strings.TrimSpace(params.Description)
	l.Condition = condition
	l.Category = category
	l.FuelType = fuel
	l.Location = strings.TrimSpace(params.Location)
	if color := strings.TrimSpace(params.Color); color != "" {
		l.Color = color
	}
	l.Features = append([]string(nil), params.Features...)
	l.Photos = append([]string(nil), params.Photos...)
	l.Featured = params.Featured
	if len(l.Photos) > 0 {
		l.ThumbnailURL = l.Photos[0]
	} else {
		l.ThumbnailURL = ""
	}
	l.UpdatedAt = params.Now.UTC()
	return nil
}

// MarkSold removes the listing from the buyable pool.
func (l *Listing) MarkSold(now time.Time) error {
	if l.Status == StatusSold {
		return nil
	}
	if l.Status != StatusActive {
		return ErrInvalidState
	}
	l.Status = StatusSold
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) Publish(now time.Time) error {
	if l.Status == StatusActive {
		return nil
	}
	if l.Status == StatusSold {
		return ErrInvalidState
	}
	l.Status = StatusActive
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) Deactivate(now time.Time) error {
	if l.Status != StatusActive && l.Status != StatusDraft {
		return ErrInvalidState
	}
	l.Status = StatusInactive
	l.UpdatedAt = now.UTC()
	return nil
}

func (l *Listing) OwnedBy(seller SellerID) bool {
	return l.Seller == seller
}

func validateAttributes(title, brand, model, location string, year int, price, mileage int64, engineCC int, now time.Time) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(brand) == "" {
		return ErrBrandRequired
	}
	if strings.TrimSpace(model) == "" {
		return ErrModelRequired
	}
	if strings.TrimSpace(location) == "" {
		return ErrLocationRequired
	}
	if now.IsZero() {
		now = time.Now()
	}
	if year < 1900 || year > now.Year()+1 {
		return ErrYearOutOfRange
	}
	if price < 0 {
		return ErrNegativePrice
	}
	if mileage < 0 {
		return ErrNegativeMileage
	}
	if engineCC < 0 {
		return ErrNegativeEngine
	}
	return nil
}

func normalizeCondition(value Condition) (Condition, error) {
	switch value {
	case ConditionNew, ConditionLikeNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return value, nil
	}
	return "", ErrInvalidCondition
}

func normalizeCategory(value Category) (Category, error) {
	switch value {
	case CategorySport, CategoryCruiser, CategoryTouring, CategoryOffRoad, CategoryScooter, CategoryElectric, CategoryVintage, CategoryOther:
		return value, nil
	}
	return "", ErrInvalidCategory
}

func normalizeFuelType(value FuelType) (FuelType, error) {
	if value == "" {
		return FuelPetrol, nil
	}
	switch value {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid, FuelOther:
		return value, nil
	}
	return "", ErrInvalidFuelType
}
