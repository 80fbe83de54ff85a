package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "motomarket/internal/domain/booking"
)

func newBooking(t *testing.T, id, user, date, timeOfDay string) *domainbooking.Booking {
	t.Helper()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:            domainbooking.BookingID(id),
		ServiceID:     "svc-1",
		Provider:      "prov-1",
		UserID:        user,
		ScheduledDate: date,
		ScheduledTime: timeOfDay,
		Price:         9000,
		Now:           time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return b
}

func TestSaveRejectsDoubleBookedSlot(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	first := newBooking(t, "b1", "user-1", "2026-04-10", "10:00")
	require.NoError(t, repo.Save(ctx, first))

	second := newBooking(t, "b2", "user-2", "2026-04-10", "10:00")
	assert.ErrorIs(t, repo.Save(ctx, second), domainbooking.ErrSlotTaken)

	// A different time on the same day is free.
	third := newBooking(t, "b3", "user-2", "2026-04-10", "11:00")
	assert.NoError(t, repo.Save(ctx, third))
}

func TestSaveAllowsUpdatingOwnBooking(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	booking := newBooking(t, "b1", "user-1", "2026-04-10", "10:00")
	require.NoError(t, repo.Save(ctx, booking))

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, booking.Confirm("", now))
	assert.NoError(t, repo.Save(ctx, booking))
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	booking := newBooking(t, "b1", "user-1", "2026-04-10", "10:00")
	require.NoError(t, repo.Save(ctx, booking))

	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, booking.Cancel("user-1", now))
	require.NoError(t, repo.Save(ctx, booking))

	retry := newBooking(t, "b2", "user-2", "2026-04-10", "10:00")
	assert.NoError(t, repo.Save(ctx, retry))

	times, err := repo.BookedTimes(ctx, "svc-1", "2026-04-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, times)
}

func TestBookedTimesOnlyCountActiveStatuses(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	pending := newBooking(t, "b1", "user-1", "2026-04-10", "09:00")
	require.NoError(t, repo.Save(ctx, pending))

	confirmed := newBooking(t, "b2", "user-2", "2026-04-10", "10:00")
	require.NoError(t, confirmed.Confirm("", now))
	require.NoError(t, repo.Save(ctx, confirmed))

	declined := newBooking(t, "b3", "user-3", "2026-04-10", "11:00")
	require.NoError(t, declined.Decline("fully booked that week", now))
	require.NoError(t, repo.Save(ctx, declined))

	otherDay := newBooking(t, "b4", "user-4", "2026-04-11", "09:00")
	require.NoError(t, repo.Save(ctx, otherDay))

	times, err := repo.BookedTimes(ctx, "svc-1", "2026-04-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, times)
}

func TestStatusCountsGroupByStatus(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()
	now := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

	first := newBooking(t, "b1", "user-1", "2026-04-10", "09:00")
	require.NoError(t, repo.Save(ctx, first))

	second := newBooking(t, "b2", "user-2", "2026-04-10", "10:00")
	require.NoError(t, second.Confirm("", now))
	require.NoError(t, repo.Save(ctx, second))

	third := newBooking(t, "b3", "user-3", "2026-04-11", "10:00")
	require.NoError(t, third.Confirm("", now))
	require.NoError(t, repo.Save(ctx, third))

	counts, err := repo.StatusCounts(ctx, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domainbooking.StatusPending])
	assert.Equal(t, 2, counts[domainbooking.StatusConfirmed])
}

func TestByUserOrdersNewestFirst(t *testing.T) {
	repo := NewBookingRepository()
	ctx := context.Background()

	older, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID: "b-old", ServiceID: "svc-1", Provider: "prov-1", UserID: "user-1",
		ScheduledDate: "2026-04-10", ScheduledTime: "09:00", Price: 9000,
		Now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	newer, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID: "b-new", ServiceID: "svc-1", Provider: "prov-1", UserID: "user-1",
		ScheduledDate: "2026-04-11", ScheduledTime: "09:00", Price: 9000,
		Now: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	bookings, err := repo.ByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, domainbooking.BookingID("b-new"), bookings[0].ID)
	assert.Equal(t, domainbooking.BookingID("b-old"), bookings[1].ID)
}
