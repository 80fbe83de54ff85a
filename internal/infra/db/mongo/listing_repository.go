package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "motomarket/internal/domain/listings"
)

const listingCollection = "listings"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(listingCollection)}
}

func ensureListingIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(listingCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "featured", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) BySeller(ctx context.Context, seller domainlistings.SellerID) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"seller_id": string(seller)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) Similar(ctx context.Context, ref *domainlistings.Listing, limit int) ([]*domainlistings.Listing, error) {
	if ref == nil || limit <= 0 {
		return nil, nil
	}
	filter := bson.M{
		"status":    string(domainlistings.StatusActive),
		"_id":       bson.M{"$ne": string(ref.ID)},
		"seller_id": bson.M{"$ne": string(ref.Seller)},
		"$or": bson.A{
			bson.M{"category": string(ref.Category)},
			bson.M{"brand": ref.Brand},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) Featured(ctx context.Context, limit int) ([]*domainlistings.Listing, error) {
	if limit <= 0 {
		return nil, nil
	}
	filter := bson.M{
		"status":   string(domainlistings.StatusActive),
		"featured": true,
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlistings.ListingID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// Search translates the normalized parameters into one find plus one count
// over the same filter, so a page and its total can never disagree.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()
	filter := searchFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	findOpts := options.Find().
		SetSort(sortDocument(opts.Sort)).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	items, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

// Facets lists distinct filterable values among active listings. Applied
// filters are deliberately ignored.
func (r *ListingRepository) Facets(ctx context.Context) (domainlistings.Facets, error) {
	activeOnly := bson.M{"status": string(domainlistings.StatusActive)}
	facets := domainlistings.Facets{}
	fields := []struct {
		name   string
		target *[]string
	}{
		{"brand", &facets.Brands},
		{"category", &facets.Categories},
		{"condition", &facets.Conditions},
		{"fuel_type", &facets.FuelTypes},
		{"location", &facets.Locations},
	}
	for _, field := range fields {
		values, err := r.col.Distinct(ctx, field.name, activeOnly)
		if err != nil {
			return domainlistings.Facets{}, err
		}
		out := make([]string, 0, len(values))
		for _, value := range values {
			if s, ok := value.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		*field.target = out
	}
	return facets, nil
}

// Stats aggregates price and year bounds of the active pool. An empty pool
// yields the domain's default bounds.
func (r *ListingRepository) Stats(ctx context.Context) (domainlistings.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(domainlistings.StatusActive)}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"min_price": bson.M{"$min": "$price"},
			"max_price": bson.M{"$max": "$price"},
			"min_year":  bson.M{"$min": "$year"},
			"max_year":  bson.M{"$max": "$year"},
		}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domainlistings.Stats{}, err
	}
	defer cursor.Close(ctx)

	var row struct {
		MinPrice int64 `bson:"min_price"`
		MaxPrice int64 `bson:"max_price"`
		MinYear  int   `bson:"min_year"`
		MaxYear  int   `bson:"max_year"`
	}
	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return domainlistings.Stats{}, err
		}
		return domainlistings.DefaultStats(time.Now()), nil
	}
	if err := cursor.Decode(&row); err != nil {
		return domainlistings.Stats{}, err
	}
	return domainlistings.Stats{
		MinPrice: row.MinPrice,
		MaxPrice: row.MaxPrice,
		MinYear:  row.MinYear,
		MaxYear:  row.MaxYear,
	}, nil
}

func searchFilter(opts domainlistings.SearchParams) bson.M {
	filter := bson.M{"status": string(domainlistings.StatusActive)}
	if opts.Search != "" {
		regex := primitive.Regex{Pattern: regexEscape(opts.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
			bson.M{"brand": regex},
			bson.M{"model": regex},
		}
	}
	if opts.MinPrice > 0 || opts.MaxPrice > 0 {
		price := bson.M{}
		if opts.MinPrice > 0 {
			price["$gte"] = opts.MinPrice
		}
		if opts.MaxPrice > 0 {
			price["$lte"] = opts.MaxPrice
		}
		filter["price"] = price
	}
	if opts.MinYear > 0 || opts.MaxYear > 0 {
		year := bson.M{}
		if opts.MinYear > 0 {
			year["$gte"] = opts.MinYear
		}
		if opts.MaxYear > 0 {
			year["$lte"] = opts.MaxYear
		}
		filter["year"] = year
	}
	if opts.Brand != "" {
		filter["brand"] = opts.Brand
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Condition != "" {
		filter["condition"] = opts.Condition
	}
	if opts.FuelType != "" {
		filter["fuel_type"] = opts.FuelType
	}
	if opts.Location != "" {
		filter["location"] = opts.Location
	}
	return filter
}

// sortDocument mirrors CatalogSort.Less: primary key plus created_at
// descending and _id as tie-breaks, keeping pagination deterministic.
func sortDocument(sort domainlistings.CatalogSort) bson.D {
	tieBreak := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	switch sort {
	case domainlistings.SortPriceLow:
		return append(bson.D{{Key: "price", Value: 1}}, tieBreak...)
	case domainlistings.SortPriceHigh:
		return append(bson.D{{Key: "price", Value: -1}}, tieBreak...)
	case domainlistings.SortYearNew:
		return append(bson.D{{Key: "year", Value: -1}}, tieBreak...)
	case domainlistings.SortYearOld:
		return append(bson.D{{Key: "year", Value: 1}}, tieBreak...)
	default:
		return tieBreak
	}
}

func regexEscape(term string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(term))
	for _, r := range term {
		for _, s := range special {
			if r == s {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlistings.Listing, error) {
	defer cursor.Close(ctx)
	out := make([]*domainlistings.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type listingDocument struct {
	ID               string   `bson:"_id"`
	SellerID         string   `bson:"seller_id"`
	Title            string   `bson:"title"`
	Brand            string   `bson:"brand"`
	Model            string   `bson:"model"`
	Year             int      `bson:"year"`
	Price            int64    `bson:"price"`
	Mileage          int64    `bson:"mileage"`
	EngineCapacityCC int      `bson:"engine_capacity_cc"`
	Description      string   `bson:"description"`
	Condition        string   `bson:"condition"`
	Color            string   `bson:"color"`
	FuelType         string   `bson:"fuel_type"`
	Category         string   `bson:"category"`
	Location         string   `bson:"location"`
	Features         []string `bson:"features"`
	Photos           []string `bson:"photos"`
	ThumbnailURL     string   `bson:"thumbnail_url"`
	Status           string   `bson:"status"`
	Featured         bool     `bson:"featured"`
	Views            int64    `bson:"views"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:               string(l.ID),
		SellerID:         string(l.Seller),
		Title:            l.Title,
		Brand:            l.Brand,
		Model:            l.Model,
		Year:             l.Year,
		Price:            l.Price,
		Mileage:          l.Mileage,
		EngineCapacityCC: l.EngineCapacityCC,
		Description:      l.Description,
		Condition:        string(l.Condition),
		Color:            l.Color,
		FuelType:         string(l.FuelType),
		Category:         string(l.Category),
		Location:         l.Location,
		Features:         l.Features,
		Photos:           l.Photos,
		ThumbnailURL:     l.ThumbnailURL,
		Status:           string(l.Status),
		Featured:         l.Featured,
		Views:            l.Views,
		CreatedAt:        l.CreatedAt.UnixMilli(),
		UpdatedAt:        l.UpdatedAt.UnixMilli(),
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	return &domainlistings.Listing{
		ID:               domainlistings.ListingID(d.ID),
		Seller:           domainlistings.SellerID(d.SellerID),
		Title:            d.Title,
		Brand:            d.Brand,
		Model:            d.Model,
		Year:             d.Year,
		Price:            d.Price,
		Mileage:          d.Mileage,
		EngineCapacityCC: d.EngineCapacityCC,
		Description:      d.Description,
		Condition:        domainlistings.Condition(d.Condition),
		Color:            d.Color,
		FuelType:         domainlistings.FuelType(d.FuelType),
		Category:         domainlistings.Category(d.Category),
		Location:         d.Location,
		Features:         d.Features,
		Photos:           d.Photos,
		ThumbnailURL:     d.ThumbnailURL,
		Status:           domainlistings.Status(d.Status),
		Featured:         d.Featured,
		Views:            d.Views,
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
