package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motomarket/internal/domain/availability"
	domainservices "motomarket/internal/domain/services"
)

const serviceCollection = "services"

type ServiceRepository struct {
	col *mongo.Collection
}

func NewServiceRepository(db *mongo.Database) *ServiceRepository {
	return &ServiceRepository{col: db.Collection(serviceCollection)}
}

func (r *ServiceRepository) ByID(ctx context.Context, id domainservices.ServiceID) (*domainservices.Service, error) {
	var doc serviceDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainservices.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ServiceRepository) Save(ctx context.Context, service *domainservices.Service) error {
	doc := newServiceDocument(service)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ServiceRepository) Delete(ctx context.Context, id domainservices.ServiceID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainservices.ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) ByProvider(ctx context.Context, provider domainservices.ProviderID) ([]*domainservices.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"provider_id": string(provider)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeServices(ctx, cursor)
}

func (r *ServiceRepository) List(ctx context.Context, params domainservices.ListParams) (domainservices.ListResult, error) {
	opts := params.Normalized()
	filter := bson.M{"active": true}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	if opts.City != "" {
		filter["city"] = primitive.Regex{Pattern: "^" + regexEscape(opts.City) + "$", Options: "i"}
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
	if opts.Search != "" {
		regex := primitive.Regex{Pattern: regexEscape(opts.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
			bson.M{"city": regex},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainservices.ListResult{}, err
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: "rating_avg", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainservices.ListResult{}, err
	}
	items, err := decodeServices(ctx, cursor)
	if err != nil {
		return domainservices.ListResult{}, err
	}
	return domainservices.ListResult{Items: items, Total: int(total)}, nil
}

func decodeServices(ctx context.Context, cursor *mongo.Cursor) ([]*domainservices.Service, error) {
	defer cursor.Close(ctx)
	out := make([]*domainservices.Service, 0)
	for cursor.Next(ctx) {
		var doc serviceDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		service, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, service)
	}
	return out, cursor.Err()
}

type scheduleEntry struct {
	Day   int    `bson:"day"`
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type serviceDocument struct {
	ID           string          `bson:"_id"`
	ProviderID   string          `bson:"provider_id"`
	Title        string          `bson:"title"`
	Description  string          `bson:"description,omitempty"`
	Type         string          `bson:"type"`
	Price        int64           `bson:"price"`
	City         string          `bson:"city"`
	Country      string          `bson:"country,omitempty"`
	Schedule     []scheduleEntry `bson:"schedule,omitempty"`
	SlotMinutes  int             `bson:"slot_minutes"`
	Active       bool            `bson:"active"`
	RatingAvg    float64         `bson:"rating_avg"`
	RatingCount  int             `bson:"rating_count"`
	ContactPhone string          `bson:"contact_phone,omitempty"`
	ContactEmail string          `bson:"contact_email,omitempty"`
	CreatedAt    int64           `bson:"created_at"`
	UpdatedAt    int64           `bson:"updated_at"`
}

func newServiceDocument(s *domainservices.Service) serviceDocument {
	schedule := make([]scheduleEntry, 0, len(s.Schedule))
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours, ok := s.Schedule[day]
		if !ok || !hours.Open {
			continue
		}
		schedule = append(schedule, scheduleEntry{
			Day:   int(day),
			Start: hours.Start.String(),
			End:   hours.End.String(),
		})
	}
	return serviceDocument{
		ID:           string(s.ID),
		ProviderID:   string(s.Provider),
		Title:        s.Title,
		Description:  s.Description,
		Type:         string(s.Type),
		Price:        s.Price,
		City:         s.City,
		Country:      s.Country,
		Schedule:     schedule,
		SlotMinutes:  s.SlotMinutes,
		Active:       s.Active,
		RatingAvg:    s.RatingAvg,
		RatingCount:  s.RatingCount,
		ContactPhone: s.ContactPhone,
		ContactEmail: s.ContactEmail,
		CreatedAt:    s.CreatedAt.UnixMilli(),
		UpdatedAt:    s.UpdatedAt.UnixMilli(),
	}
}

func (d serviceDocument) toAggregate() (*domainservices.Service, error) {
	schedule := make(domainservices.WeekSchedule, len(d.Schedule))
	for _, entry := range d.Schedule {
		start, err := availability.ParseClock(entry.Start)
		if err != nil {
			return nil, err
		}
		end, err := availability.ParseClock(entry.End)
		if err != nil {
			return nil, err
		}
		schedule[time.Weekday(entry.Day)] = availability.DayHours{Open: true, Start: start, End: end}
	}
	return &domainservices.Service{
		ID:           domainservices.ServiceID(d.ID),
		Provider:     domainservices.ProviderID(d.ProviderID),
		Title:        d.Title,
		Description:  d.Description,
		Type:         domainservices.ServiceType(d.Type),
		Price:        d.Price,
		City:         d.City,
		Country:      d.Country,
		Schedule:     schedule,
		SlotMinutes:  d.SlotMinutes,
		Active:       d.Active,
		RatingAvg:    d.RatingAvg,
		RatingCount:  d.RatingCount,
		ContactPhone: d.ContactPhone,
		ContactEmail: d.ContactEmail,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}, nil
}
