package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"motomarket/internal/domain/listings"
	"motomarket/internal/domain/services"
)

var (
	ErrInvalidState  = errors.New("booking: invalid status transition")
	ErrUserRequired  = errors.New("booking: user id required")
	ErrBadDate       = errors.New("booking: scheduled date must be YYYY-MM-DD")
	ErrBadTime       = errors.New("booking: scheduled time must be HH:MM")
	ErrNotFound      = errors.New("booking: not found")
	ErrSlotTaken     = errors.New("booking: slot already booked, pick another time")
	ErrInvalidStatus = errors.New("booking: unknown status")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
)

// ActiveStatuses are the statuses that hold a slot. Cancelled, declined and
// completed bookings release it.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Booking is a scheduled service appointment.
type Booking struct {
	ID              BookingID
	ServiceID       services.ServiceID
	Provider        services.ProviderID
	UserID          string
	ListingID       listings.ListingID
	ScheduledDate   string // YYYY-MM-DD
	ScheduledTime   string // HH:MM, 24-hour
	Status          Status
	Price           int64
	Notes           string
	ProviderNotes   string
	ConfirmedAt     time.Time
	CompletedAt     time.Time
	CancelledAt     time.Time
	CancelledBy     string
	ReviewSubmitted bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Repository is the persistence port for bookings. Save must enforce slot
// uniqueness over (service, date, time) among pending/confirmed bookings and
// return ErrSlotTaken on contention; implementations back this with a
// storage-level constraint so two concurrent writers cannot both win.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ByUser(ctx context.Context, userID string) ([]*Booking, error)
	ByProvider(ctx context.Context, provider services.ProviderID) ([]*Booking, error)
	// BookedTimes lists the HH:MM starts held by pending or confirmed
	// bookings of a service on a date.
	BookedTimes(ctx context.Context, serviceID services.ServiceID, date string) ([]string, error)
	StatusCounts(ctx context.Context, provider services.ProviderID) (map[Status]int, error)
}

type CreateParams struct {
	ID            BookingID
	ServiceID     services.ServiceID
	Provider      services.ProviderID
	UserID        string
	ListingID     listings.ListingID
	ScheduledDate string
	ScheduledTime string
	Price         int64
	Notes         string
	Now           time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("booking: id is required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if _, err := ParseDate(params.ScheduledDate); err != nil {
		return nil, err
	}
	if err := validateTime(params.ScheduledTime); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	return &Booking{
		ID:            params.ID,
		ServiceID:     params.ServiceID,
		Provider:      params.Provider,
		UserID:        params.UserID,
		ListingID:     params.ListingID,
		ScheduledDate: params.ScheduledDate,
		ScheduledTime: params.ScheduledTime,
		Status:        StatusPending,
		Price:         params.Price,
		Notes:         strings.TrimSpace(params.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ScheduledAt combines the date and time fields into one instant in UTC.
func (b *Booking) ScheduledAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", b.ScheduledDate+" "+b.ScheduledTime)
}

func (b *Booking) Confirm(notes string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.ProviderNotes = strings.TrimSpace(notes)
	b.ConfirmedAt = now.UTC()
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) Decline(notes string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusDeclined
	b.ProviderNotes = strings.TrimSpace(notes)
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.CompletedAt = now.UTC()
	b.UpdatedAt = now.UTC()
	return nil
}

// Cancel applies the cancellation policy before transitioning. The caller id
// is recorded so notifications can tell user and provider cancellations
// apart.
func (b *Booking) Cancel(cancelledBy string, now time.Time) error {
	if !b.CanBeCancelled(now) {
		return ErrTooLateToCancel
	}
	b.Status = StatusCancelled
	b.CancelledAt = now.UTC()
	b.CancelledBy = cancelledBy
	b.UpdatedAt = now.UTC()
	return nil
}

// Reschedule moves a pending or confirmed booking to a new slot; policy
// checks are in CanBeRescheduled and slot contention is re-checked by the
// repository on save.
func (b *Booking) Reschedule(date, timeOfDay string, now time.Time) error {
	if !b.CanBeRescheduled(now) {
		return ErrTooLateToReschedule
	}
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if err := validateTime(timeOfDay); err != nil {
		return err
	}
	b.ScheduledDate = date
	b.ScheduledTime = timeOfDay
	b.UpdatedAt = now.UTC()
	return nil
}

func (b *Booking) MarkReviewed(now time.Time) {
	b.ReviewSubmitted = true
	b.UpdatedAt = now.UTC()
}

// ParseDate validates a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ParseStatus accepts any casing and returns the canonical lowercase status.
func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined:
		return status, nil
	}
	return "", ErrInvalidStatus
}

func validateTime(value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return ErrBadTime
	}
	return nil
}
