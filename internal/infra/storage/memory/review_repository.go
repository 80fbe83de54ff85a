package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "motomarket/internal/domain/booking"
	domainreviews "motomarket/internal/domain/reviews"
	domainservices "motomarket/internal/domain/services"
)

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items: make(map[domainreviews.ReviewID]*domainreviews.Review),
	}
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, review := range r.items {
		if review.BookingID == bookingID {
			clone := *review
			return &clone, nil
		}
	}
	return nil, domainreviews.ErrNotFound
}

func (r *ReviewRepository) ByService(ctx context.Context, serviceID domainservices.ServiceID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ServiceID == serviceID {
			clone := *review
			matches = append(matches, &clone)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + limit
	if limit <= 0 || end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *review
	r.items[review.ID] = &clone
	return nil
}
