package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"motomarket/internal/app/dto"
	"motomarket/internal/domain/availability"
	domainbooking "motomarket/internal/domain/booking"
	domainlistings "motomarket/internal/domain/listings"
	domainservices "motomarket/internal/domain/services"
)

var (
	ErrNotParticipant     = errors.New("scheduling: caller is not part of this booking")
	ErrServiceUnavailable = errors.New("scheduling: service is not accepting bookings")
	ErrSlotNotOffered     = errors.New("scheduling: requested time is not an offered slot")
)

// Publisher emits booking lifecycle events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event is the payload published on every booking state change.
type Event struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	ServiceID string    `json:"service_id"`
	Provider  string    `json:"provider_id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"scheduled_date"`
	Time      string    `json:"scheduled_time"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

const (
	EventBookingRequested   = "booking.requested"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingDeclined    = "booking.declined"
	EventBookingCompleted   = "booking.completed"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingRescheduled = "booking.rescheduled"
)

// Service coordinates slot availability and the booking lifecycle.
type Service struct {
	Services domainservices.Repository
	Bookings domainbooking.Repository
	Events   Publisher
	Logger   *slog.Logger
	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// DayAvailability computes the free slots of a service on a calendar date:
// the schedule's slot grid for that weekday minus times already held by
// pending or confirmed bookings.
func (s *Service) DayAvailability(ctx context.Context, serviceID domainservices.ServiceID, date string) (dto.DayAvailability, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.DayAvailability{}, err
	}
	day, err := domainbooking.ParseDate(date)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	offer, err := s.Services.ByID(ctx, serviceID)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	booked, err := s.Bookings.BookedTimes(ctx, serviceID, date)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	slots, err := availability.FreeSlots(offer.DayHours(day.Weekday()), offer.SlotMinutes, booked)
	if err != nil {
		return dto.DayAvailability{}, err
	}
	return dto.DayAvailability{
		ServiceID: string(serviceID),
		Date:      date,
		Slots:     slots,
	}, nil
}

type BookParams struct {
	ServiceID     domainservices.ServiceID
	UserID        string
	ListingID     string
	ScheduledDate string
	ScheduledTime string
	Notes         string
}

// Book places a new booking on a free slot. The offered-slot check here is a
// courtesy; the repository's uniqueness constraint is what decides races, so
// two concurrent requests for the last slot end with exactly one winner.
func (s *Service) Book(ctx context.Context, params BookParams) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	offer, err := s.Services.ByID(ctx, params.ServiceID)
	if err != nil {
		return nil, err
	}
	if !offer.Active {
		return nil, ErrServiceUnavailable
	}
	if err := s.ensureSlotOffered(ctx, offer, params.ScheduledDate, params.ScheduledTime); err != nil {
		return nil, err
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.BookingID(uuid.NewString()),
		ServiceID:     offer.ID,
		Provider:      offer.Provider,
		UserID:        params.UserID,
		ListingID:     domainlistings.ListingID(params.ListingID),
		ScheduledDate: params.ScheduledDate,
		ScheduledTime: params.ScheduledTime,
		Price:         offer.Price,
		Notes:         params.Notes,
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingRequested, booking)
	if s.Logger != nil {
		s.Logger.Info("booking requested",
			"booking_id", booking.ID,
			"service_id", booking.ServiceID,
			"date", booking.ScheduledDate,
			"time", booking.ScheduledTime,
		)
	}
	return booking, nil
}

// Cancel ends a booking within the cancellation window. Both the customer
// and the provider may cancel.
func (s *Service) Cancel(ctx context.Context, id domainbooking.BookingID, actorID string) (*domainbooking.Booking, error) {
	booking, err := s.participantBooking(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if err := booking.Cancel(actorID, s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingCancelled, booking)
	return booking, nil
}

// Reschedule moves a booking to a new free slot.
func (s *Service) Reschedule(ctx context.Context, id domainbooking.BookingID, actorID, date, timeOfDay string) (*domainbooking.Booking, error) {
	booking, err := s.participantBooking(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	offer, err := s.Services.ByID(ctx, booking.ServiceID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotOffered(ctx, offer, date, timeOfDay); err != nil {
		return nil, err
	}
	if err := booking.Reschedule(date, timeOfDay, s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingRescheduled, booking)
	return booking, nil
}

// Confirm, Decline and Complete are provider-side transitions.

func (s *Service) Confirm(ctx context.Context, id domainbooking.BookingID, provider domainservices.ProviderID, notes string) (*domainbooking.Booking, error) {
	booking, err := s.providerBooking(ctx, id, provider)
	if err != nil {
		return nil, err
	}
	if err := booking.Confirm(notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingConfirmed, booking)
	return booking, nil
}

func (s *Service) Decline(ctx context.Context, id domainbooking.BookingID, provider domainservices.ProviderID, notes string) (*domainbooking.Booking, error) {
	booking, err := s.providerBooking(ctx, id, provider)
	if err != nil {
		return nil, err
	}
	if err := booking.Decline(notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingDeclined, booking)
	return booking, nil
}

func (s *Service) Complete(ctx context.Context, id domainbooking.BookingID, provider domainservices.ProviderID) (*domainbooking.Booking, error) {
	booking, err := s.providerBooking(ctx, id, provider)
	if err != nil {
		return nil, err
	}
	if err := booking.Complete(s.now()); err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	s.publish(ctx, EventBookingCompleted, booking)
	return booking, nil
}

// UserBookings lists a customer's bookings with service snapshots.
func (s *Service) UserBookings(ctx context.Context, userID string) (dto.BookingCollection, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.BookingCollection{}, err
	}
	bookings, err := s.Bookings.ByUser(ctx, userID)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	snapshots, err := s.serviceSnapshots(ctx, bookings)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	return dto.MapBookingCollection(bookings, snapshots, s.now()), nil
}

// ProviderDashboard lists a provider's bookings plus their status pipeline.
func (s *Service) ProviderDashboard(ctx context.Context, provider domainservices.ProviderID) (dto.ProviderDashboard, error) {
	if err := s.ensureDependencies(); err != nil {
		return dto.ProviderDashboard{}, err
	}
	bookings, err := s.Bookings.ByProvider(ctx, provider)
	if err != nil {
		return dto.ProviderDashboard{}, err
	}
	counts, err := s.Bookings.StatusCounts(ctx, provider)
	if err != nil {
		return dto.ProviderDashboard{}, err
	}
	snapshots, err := s.serviceSnapshots(ctx, bookings)
	if err != nil {
		return dto.ProviderDashboard{}, err
	}
	collection := dto.MapBookingCollection(bookings, snapshots, s.now())
	return dto.ProviderDashboard{
		Bookings:     collection.Bookings,
		StatusCounts: dto.MapStatusCounts(counts),
	}, nil
}

func (s *Service) Booking(ctx context.Context, id domainbooking.BookingID, actorID string) (*domainbooking.Booking, error) {
	return s.participantBooking(ctx, id, actorID)
}

func (s *Service) ensureSlotOffered(ctx context.Context, offer *domainservices.Service, date, timeOfDay string) error {
	day, err := domainbooking.ParseDate(date)
	if err != nil {
		return err
	}
	booked, err := s.Bookings.BookedTimes(ctx, offer.ID, date)
	if err != nil {
		return err
	}
	slots, err := availability.FreeSlots(offer.DayHours(day.Weekday()), offer.SlotMinutes, booked)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if slot == timeOfDay {
			return nil
		}
	}
	for _, taken := range booked {
		if taken == timeOfDay {
			return domainbooking.ErrSlotTaken
		}
	}
	return ErrSlotNotOffered
}

func (s *Service) participantBooking(ctx context.Context, id domainbooking.BookingID, actorID string) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actorID && string(booking.Provider) != actorID {
		return nil, ErrNotParticipant
	}
	return booking, nil
}

func (s *Service) providerBooking(ctx context.Context, id domainbooking.BookingID, provider domainservices.ProviderID) (*domainbooking.Booking, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	booking, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Provider != provider {
		return nil, ErrNotParticipant
	}
	return booking, nil
}

func (s *Service) serviceSnapshots(ctx context.Context, bookings []*domainbooking.Booking) (map[domainservices.ServiceID]*domainservices.Service, error) {
	snapshots := make(map[domainservices.ServiceID]*domainservices.Service)
	for _, booking := range bookings {
		if _, seen := snapshots[booking.ServiceID]; seen {
			continue
		}
		offer, err := s.Services.ByID(ctx, booking.ServiceID)
		if err != nil {
			if errors.Is(err, domainservices.ErrNotFound) {
				snapshots[booking.ServiceID] = nil
				continue
			}
			return nil, err
		}
		snapshots[booking.ServiceID] = offer
	}
	return snapshots, nil
}

func (s *Service) publish(ctx context.Context, eventType string, booking *domainbooking.Booking) {
	if s.Events == nil {
		return
	}
	event := Event{
		Type:      eventType,
		BookingID: string(booking.ID),
		ServiceID: string(booking.ServiceID),
		Provider:  string(booking.Provider),
		UserID:    booking.UserID,
		Date:      booking.ScheduledDate,
		Time:      booking.ScheduledTime,
		Status:    string(booking.Status),
		At:        s.now(),
	}
	if err := s.Events.Publish(ctx, event); err != nil && s.Logger != nil {
		s.Logger.Warn("booking event publish failed", "type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Services == nil:
		return errors.New("scheduling: service repository required")
	case s.Bookings == nil:
		return errors.New("scheduling: booking repository required")
	default:
		return nil
	}
}
