package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "motomarket/internal/domain/booking"
	domainlistings "motomarket/internal/domain/listings"
	domainservices "motomarket/internal/domain/services"
)

const bookingCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingCollection)}
}

// ensureBookingIndexes creates the partial unique index that decides slot
// races: only pending and confirmed bookings hold a slot, so cancelled ones
// free it without deletes.
func ensureBookingIndexes(ctx context.Context, db *mongo.Database) error {
	activeFilter := bson.M{"status": bson.M{"$in": activeStatusStrings()}}
	_, err := db.Collection(bookingCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "service_id", Value: 1},
				{Key: "scheduled_date", Value: 1},
				{Key: "scheduled_time", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(activeFilter),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *BookingRepository) ByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepository) ByProvider(ctx context.Context, provider domainservices.ProviderID) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"provider_id": string(provider)})
}

func (r *BookingRepository) BookedTimes(ctx context.Context, serviceID domainservices.ServiceID, date string) ([]string, error) {
	filter := bson.M{
		"service_id":     string(serviceID),
		"scheduled_date": date,
		"status":         bson.M{"$in": activeStatusStrings()},
	}
	opts := options.Find().
		SetProjection(bson.M{"scheduled_time": 1}).
		SetSort(bson.D{{Key: "scheduled_time", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	times := make([]string, 0)
	for cursor.Next(ctx) {
		var row struct {
			ScheduledTime string `bson:"scheduled_time"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		times = append(times, row.ScheduledTime)
	}
	return times, cursor.Err()
}

func (r *BookingRepository) StatusCounts(ctx context.Context, provider domainservices.ProviderID) (map[domainbooking.Status]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"provider_id": string(provider)}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[domainbooking.Status]int)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[domainbooking.Status(row.Status)] = row.Count
	}
	return counts, cursor.Err()
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func activeStatusStrings() []string {
	out := make([]string, 0, len(domainbooking.ActiveStatuses))
	for _, status := range domainbooking.ActiveStatuses {
		out = append(out, string(status))
	}
	return out
}

type bookingDocument struct {
	ID              string `bson:"_id"`
	ServiceID       string `bson:"service_id"`
	ProviderID      string `bson:"provider_id"`
	UserID          string `bson:"user_id"`
	ListingID       string `bson:"listing_id,omitempty"`
	ScheduledDate   string `bson:"scheduled_date"`
	ScheduledTime   string `bson:"scheduled_time"`
	Status          string `bson:"status"`
	Price           int64  `bson:"price"`
	Notes           string `bson:"notes,omitempty"`
	ProviderNotes   string `bson:"provider_notes,omitempty"`
	ConfirmedAt     int64  `bson:"confirmed_at,omitempty"`
	CompletedAt     int64  `bson:"completed_at,omitempty"`
	CancelledAt     int64  `bson:"cancelled_at,omitempty"`
	CancelledBy     string `bson:"cancelled_by,omitempty"`
	ReviewSubmitted bool   `bson:"review_submitted"`
	CreatedAt       int64  `bson:"created_at"`
	UpdatedAt       int64  `bson:"updated_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:              string(b.ID),
		ServiceID:       string(b.ServiceID),
		ProviderID:      string(b.Provider),
		UserID:          b.UserID,
		ListingID:       string(b.ListingID),
		ScheduledDate:   b.ScheduledDate,
		ScheduledTime:   b.ScheduledTime,
		Status:          string(b.Status),
		Price:           b.Price,
		Notes:           b.Notes,
		ProviderNotes:   b.ProviderNotes,
		CancelledBy:     b.CancelledBy,
		ReviewSubmitted: b.ReviewSubmitted,
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
	}
	if !b.ConfirmedAt.IsZero() {
		doc.ConfirmedAt = b.ConfirmedAt.UnixMilli()
	}
	if !b.CompletedAt.IsZero() {
		doc.CompletedAt = b.CompletedAt.UnixMilli()
	}
	if !b.CancelledAt.IsZero() {
		doc.CancelledAt = b.CancelledAt.UnixMilli()
	}
	return doc
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		ServiceID:       domainservices.ServiceID(d.ServiceID),
		Provider:        domainservices.ProviderID(d.ProviderID),
		UserID:          d.UserID,
		ListingID:       domainlistings.ListingID(d.ListingID),
		ScheduledDate:   d.ScheduledDate,
		ScheduledTime:   d.ScheduledTime,
		Status:          domainbooking.Status(d.Status),
		Price:           d.Price,
		Notes:           d.Notes,
		ProviderNotes:   d.ProviderNotes,
		CancelledBy:     d.CancelledBy,
		ReviewSubmitted: d.ReviewSubmitted,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
	if d.ConfirmedAt != 0 {
		b.ConfirmedAt = timestampToTime(d.ConfirmedAt)
	}
	if d.CompletedAt != 0 {
		b.CompletedAt = timestampToTime(d.CompletedAt)
	}
	if d.CancelledAt != 0 {
		b.CancelledAt = timestampToTime(d.CancelledAt)
	}
	return b
}
