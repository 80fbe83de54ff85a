package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "motomarket/internal/domain/booking"
	domainservices "motomarket/internal/domain/services"
)

// BookingRepository keeps bookings in memory. The slot uniqueness check runs
// under the write lock, so concurrent saves of the same slot behave like the
// database's unique index.
type BookingRepository struct {
	mu    sync.Mutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items: make(map[domainbooking.BookingID]*domainbooking.Booking),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *booking
	return &clone, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if holdsSlot(booking.Status) {
		for _, other := range r.items {
			if other.ID == booking.ID {
				continue
			}
			if !holdsSlot(other.Status) {
				continue
			}
			if other.ServiceID == booking.ServiceID &&
				other.ScheduledDate == booking.ScheduledDate &&
				other.ScheduledTime == booking.ScheduledTime {
				return domainbooking.ErrSlotTaken
			}
		}
	}
	clone := *booking
	r.items[booking.ID] = &clone
	return nil
}

func (r *BookingRepository) ByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.UserID == userID {
			clone := *booking
			out = append(out, &clone)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *BookingRepository) ByProvider(ctx context.Context, provider domainservices.ProviderID) ([]*domainbooking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.Provider == provider {
			clone := *booking
			out = append(out, &clone)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *BookingRepository) BookedTimes(ctx context.Context, serviceID domainservices.ServiceID, date string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0)
	for _, booking := range r.items {
		if booking.ServiceID != serviceID || booking.ScheduledDate != date {
			continue
		}
		if !holdsSlot(booking.Status) {
			continue
		}
		out = append(out, booking.ScheduledTime)
	}
	sort.Strings(out)
	return out, nil
}

func (r *BookingRepository) StatusCounts(ctx context.Context, provider domainservices.ProviderID) (map[domainbooking.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domainbooking.Status]int)
	for _, booking := range r.items {
		if booking.Provider == provider {
			counts[booking.Status]++
		}
	}
	return counts, nil
}

func holdsSlot(status domainbooking.Status) bool {
	for _, active := range domainbooking.ActiveStatuses {
		if status == active {
			return true
		}
	}
	return false
}

func sortByCreated(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID < bookings[j].ID
	})
}
