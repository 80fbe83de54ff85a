package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"motomarket/internal/domain/availability"
)

var (
	ErrTitleRequired   = errors.New("services: title is required")
	ErrCityRequired    = errors.New("services: city is required")
	ErrNegativePrice   = errors.New("services: price must be non-negative")
	ErrInvalidType     = errors.New("services: unknown service type")
	ErrInvalidSchedule = errors.New("services: open hours must have start before end")
	ErrInvalidSlotSize = errors.New("services: slot duration must be positive")
	ErrNotFound        = errors.New("services: not found")
	ErrNotOwner        = errors.New("services: caller does not own this service")
)

type ServiceID string
type ProviderID string

type ServiceType string

const (
	TypeMaintenance   ServiceType = "Maintenance"
	TypeRepair        ServiceType = "Repair"
	TypeCustomization ServiceType = "Customization"
	TypeInspection    ServiceType = "Inspection"
	TypeDetailing     ServiceType = "Detailing"
	TypeOther         ServiceType = "Other"
)

// DefaultSlotMinutes applies when a service does not configure its own
// booking granularity.
const DefaultSlotMinutes = 60

// WeekSchedule maps weekdays to their open hours. A missing entry means the
// service is closed that day.
type WeekSchedule map[time.Weekday]availability.DayHours

// Service is a motorcycle servicing offer made by a provider.
type Service struct {
	ID           ServiceID
	Provider     ProviderID
	Title        string
	Description  string
	Type         ServiceType
	Price        int64
	City         string
	Country      string
	Schedule     WeekSchedule
	SlotMinutes  int
	Active       bool
	RatingAvg    float64
	RatingCount  int
	ContactPhone string
	ContactEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ServiceID) (*Service, error)
	Save(ctx context.Context, service *Service) error
	Delete(ctx context.Context, id ServiceID) error
	ByProvider(ctx context.Context, provider ProviderID) ([]*Service, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
}

// ListParams filter the public service directory.
type ListParams struct {
	Type     string
	MinPrice int64
	MaxPrice int64
	City     string
	Search   string
	Page     int
	Limit    int
}

func (p ListParams) Normalized() ListParams {
	normalized := p
	normalized.Type = strings.TrimSpace(normalized.Type)
	normalized.City = strings.TrimSpace(normalized.City)
	normalized.Search = strings.TrimSpace(normalized.Search)
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice < 0 {
		normalized.MaxPrice = 0
	}
	if normalized.Page < 1 {
		normalized.Page = 1
	}
	if normalized.Limit <= 0 {
		normalized.Limit = 10
	}
	return normalized
}

type ListResult struct {
	Items []*Service
	Total int
}

type CreateParams struct {
	ID           ServiceID
	Provider     ProviderID
	Title        string
	Description  string
	Type         ServiceType
	Price        int64
	City         string
	Country      string
	Schedule     WeekSchedule
	SlotMinutes  int
	ContactPhone string
	ContactEmail string
	Now          time.Time
}

func NewService(params CreateParams) (*Service, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("services: id is required")
	}
	if strings.TrimSpace(string(params.Provider)) == "" {
		return nil, errors.New("services: provider is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return nil, ErrCityRequired
	}
	if params.Price < 0 {
		return nil, ErrNegativePrice
	}
	serviceType, err := normalizeType(params.Type)
	if err != nil {
		return nil, err
	}
	slotMinutes := params.SlotMinutes
	if slotMinutes == 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if slotMinutes < 0 {
		return nil, ErrInvalidSlotSize
	}
	schedule, err := normalizeSchedule(params.Schedule)
	if err != nil {
		return nil, err
	}
	now := params.Now.UTC()

	return &Service{
		ID:           params.ID,
		Provider:     params.Provider,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		Type:         serviceType,
		Price:        params.Price,
		City:         strings.TrimSpace(params.City),
		Country:      strings.TrimSpace(params.Country),
		Schedule:     schedule,
		SlotMinutes:  slotMinutes,
		Active:       true,
		ContactPhone: strings.TrimSpace(params.ContactPhone),
		ContactEmail: strings.TrimSpace(params.ContactEmail),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

type UpdateParams struct {
	Title        string
	Description  string
	Type         ServiceType
	Price        int64
	City         string
	Country      string
	Schedule     WeekSchedule
	SlotMinutes  int
	ContactPhone string
	ContactEmail string
	Now          time.Time
}

func (s *Service) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(params.City) == "" {
		return ErrCityRequired
	}
	if params.Price < 0 {
		return ErrNegativePrice
	}
	serviceType, err := normalizeType(params.Type)
	if err != nil {
		return err
	}
	slotMinutes := params.SlotMinutes
	if slotMinutes == 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if slotMinutes < 0 {
		return ErrInvalidSlotSize
	}
	schedule, err := normalizeSchedule(params.Schedule)
	if err != nil {
		return err
	}

	s.Title = strings.TrimSpace(params.Title)
	s.Description = strings.TrimSpace(params.Description)
	s.Type = serviceType
	s.Price = params.Price
	s.City = strings.TrimSpace(params.City)
	s.Country = strings.TrimSpace(params.Country)
	s.Schedule = schedule
	s.SlotMinutes = slotMinutes
	s.ContactPhone = strings.TrimSpace(params.ContactPhone)
	s.ContactEmail = strings.TrimSpace(params.ContactEmail)
	s.UpdatedAt = params.Now.UTC()
	return nil
}

func (s *Service) Deactivate(now time.Time) {
	s.Active = false
	s.UpdatedAt = now.UTC()
}

// DayHours resolves the open hours for a weekday, defaulting to closed when
// the schedule has no entry.
func (s *Service) DayHours(day time.Weekday) availability.DayHours {
	if s.Schedule == nil {
		return availability.DayHours{}
	}
	return s.Schedule[day]
}

// RecordRating folds a new review score into the running average.
func (s *Service) RecordRating(score int, now time.Time) {
	total := s.RatingAvg*float64(s.RatingCount) + float64(score)
	s.RatingCount++
	s.RatingAvg = total / float64(s.RatingCount)
	s.UpdatedAt = now.UTC()
}

func normalizeType(value ServiceType) (ServiceType, error) {
	switch value {
	case TypeMaintenance, TypeRepair, TypeCustomization, TypeInspection, TypeDetailing, TypeOther:
		return value, nil
	}
	return "", ErrInvalidType
}

func normalizeSchedule(schedule WeekSchedule) (WeekSchedule, error) {
	if len(schedule) == 0 {
		return WeekSchedule{}, nil
	}
	normalized := make(WeekSchedule, len(schedule))
	for day, hours := range schedule {
		if !hours.Open {
			continue
		}
		if err := hours.Validate(); err != nil {
			return nil, ErrInvalidSchedule
		}
		normalized[day] = hours
	}
	return normalized, nil
}
