package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"motomarket/internal/domain/booking"
	"motomarket/internal/domain/services"
)

var (
	ErrInvalidRating   = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound        = errors.New("reviews: not found")
	ErrAlreadyReviewed = errors.New("reviews: booking already reviewed")
	ErrBookingNotDone  = errors.New("reviews: only completed bookings can be reviewed")
)

type ReviewID string

// Review is feedback left by a customer after a completed service booking.
type Review struct {
	ID        ReviewID
	ServiceID services.ServiceID
	BookingID booking.BookingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type Repository interface {
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ByService(ctx context.Context, serviceID services.ServiceID, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID        ReviewID
	ServiceID services.ServiceID
	BookingID booking.BookingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:        params.ID,
		ServiceID: params.ServiceID,
		BookingID: params.BookingID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}
