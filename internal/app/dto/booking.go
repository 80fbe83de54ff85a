package dto

import (
	"time"

	domainbooking "motomarket/internal/domain/booking"
	domainservices "motomarket/internal/domain/services"
)

// BookingServiceSnapshot carries enough service context to render a booking
// row without another lookup.
type BookingServiceSnapshot struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	City  string `json:"city"`
}

type BookingSummary struct {
	ID              string                 `json:"id"`
	Service         BookingServiceSnapshot `json:"service"`
	UserID          string                 `json:"user_id"`
	ListingID       string                 `json:"listing_id,omitempty"`
	ScheduledDate   string                 `json:"scheduled_date"`
	ScheduledTime   string                 `json:"scheduled_time"`
	Status          string                 `json:"status"`
	Price           int64                  `json:"price"`
	Notes           string                 `json:"notes,omitempty"`
	ProviderNotes   string                 `json:"provider_notes,omitempty"`
	CanCancel       bool                   `json:"can_cancel"`
	CanReschedule   bool                   `json:"can_reschedule"`
	ReviewSubmitted bool                   `json:"review_submitted"`
	CreatedAt       time.Time              `json:"created_at"`
}

type BookingCollection struct {
	Bookings []BookingSummary `json:"bookings"`
}

// ProviderDashboard summarizes a provider's pipeline by status.
type ProviderDashboard struct {
	Bookings     []BookingSummary `json:"bookings"`
	StatusCounts map[string]int   `json:"status_counts"`
}

// MapBookingSummary renders one booking; the policy flags are evaluated
// against the supplied clock so clients need no date arithmetic.
func MapBookingSummary(booking *domainbooking.Booking, service *domainservices.Service, now time.Time) BookingSummary {
	snapshot := BookingServiceSnapshot{
		ID: string(booking.ServiceID),
	}
	if service != nil {
		snapshot.Title = service.Title
		snapshot.Type = string(service.Type)
		snapshot.City = service.City
	}
	return BookingSummary{
		ID:              string(booking.ID),
		Service:         snapshot,
		UserID:          booking.UserID,
		ListingID:       string(booking.ListingID),
		ScheduledDate:   booking.ScheduledDate,
		ScheduledTime:   booking.ScheduledTime,
		Status:          string(booking.Status),
		Price:           booking.Price,
		Notes:           booking.Notes,
		ProviderNotes:   booking.ProviderNotes,
		CanCancel:       booking.CanBeCancelled(now),
		CanReschedule:   booking.CanBeRescheduled(now),
		ReviewSubmitted: booking.ReviewSubmitted,
		CreatedAt:       booking.CreatedAt,
	}
}

func MapBookingCollection(bookings []*domainbooking.Booking, services map[domainservices.ServiceID]*domainservices.Service, now time.Time) BookingCollection {
	items := make([]BookingSummary, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, MapBookingSummary(booking, services[booking.ServiceID], now))
	}
	return BookingCollection{Bookings: items}
}

func MapStatusCounts(counts map[domainbooking.Status]int) map[string]int {
	out := make(map[string]int, len(counts))
	for status, count := range counts {
		out[string(status)] = count
	}
	return out
}
