package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainbooking "motomarket/internal/domain/booking"
	domainreviews "motomarket/internal/domain/reviews"
	domainservices "motomarket/internal/domain/services"
)

var ErrNotAuthor = errors.New("reviews: only the booking customer can review")

// Service accepts reviews for completed bookings and keeps the service
// rating in sync.
type Service struct {
	Reviews  domainreviews.Repository
	Bookings domainbooking.Repository
	Services domainservices.Repository
	Logger   *slog.Logger
}

type SubmitParams struct {
	BookingID domainbooking.BookingID
	AuthorID  string
	Rating    int
	Comment   string
}

func (s *Service) Submit(ctx context.Context, params SubmitParams) (*domainreviews.Review, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	booking, err := s.Bookings.ByID(ctx, params.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != params.AuthorID {
		return nil, ErrNotAuthor
	}
	if booking.Status != domainbooking.StatusCompleted {
		return nil, domainreviews.ErrBookingNotDone
	}
	if booking.ReviewSubmitted {
		return nil, domainreviews.ErrAlreadyReviewed
	}
	if _, err := s.Reviews.ByBooking(ctx, booking.ID); err == nil {
		return nil, domainreviews.ErrAlreadyReviewed
	} else if !errors.Is(err, domainreviews.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		ServiceID: booking.ServiceID,
		BookingID: booking.ID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Comment:   params.Comment,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Save(ctx, review); err != nil {
		return nil, err
	}

	booking.MarkReviewed(now)
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, err
	}
	if offer, err := s.Services.ByID(ctx, booking.ServiceID); err == nil {
		offer.RecordRating(review.Rating, now)
		if err := s.Services.Save(ctx, offer); err != nil && s.Logger != nil {
			s.Logger.Warn("service rating update failed", "service_id", offer.ID, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("review submitted", "booking_id", booking.ID, "service_id", booking.ServiceID, "rating", review.Rating)
	}
	return review, nil
}

func (s *Service) ByService(ctx context.Context, serviceID domainservices.ServiceID, limit, offset int) ([]*domainreviews.Review, error) {
	if s.Reviews == nil {
		return nil, errors.New("reviews: review repository required")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Reviews.ByService(ctx, serviceID, limit, offset)
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Reviews == nil:
		return errors.New("reviews: review repository required")
	case s.Bookings == nil:
		return errors.New("reviews: booking repository required")
	case s.Services == nil:
		return errors.New("reviews: service repository required")
	default:
		return nil
	}
}
