package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motomarket/internal/domain/availability"
	domainbooking "motomarket/internal/domain/booking"
	domainservices "motomarket/internal/domain/services"
	"motomarket/internal/infra/storage/memory"
)

// 2026-04-06 is a Monday; the fixture workshop is open Mondays 09:00-12:00
// with hourly slots and closed on Sundays.
const (
	openDate   = "2026-04-06"
	closedDate = "2026-04-05"
)

type capturingPublisher struct {
	events []Event
}

func (p *capturingPublisher) Publish(_ context.Context, event Event) error {
	p.events = append(p.events, event)
	return nil
}

func fixtureService(t *testing.T, services domainservices.Repository) *domainservices.Service {
	t.Helper()
	offer, err := domainservices.NewService(domainservices.CreateParams{
		ID:       "svc-1",
		Provider: "prov-1",
		Title:    "Chain and sprocket replacement",
		Type:     domainservices.TypeMaintenance,
		Price:    12000,
		City:     "Porto",
		Schedule: domainservices.WeekSchedule{
			time.Monday: {Open: true, Start: availability.MustClock("09:00"), End: availability.MustClock("12:00")},
		},
		SlotMinutes: 60,
		Now:         time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, services.Save(context.Background(), offer))
	return offer
}

func fixtureScheduler(t *testing.T) (*Service, *capturingPublisher) {
	t.Helper()
	services := memory.NewServiceRepository()
	fixtureService(t, services)
	publisher := &capturingPublisher{}
	return &Service{
		Services: services,
		Bookings: memory.NewBookingRepository(),
		Events:   publisher,
		Clock:    func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) },
	}, publisher
}

func TestDayAvailabilityListsOpenSlots(t *testing.T) {
	svc, _ := fixtureScheduler(t)

	day, err := svc.DayAvailability(context.Background(), "svc-1", openDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, day.Slots)
}

func TestDayAvailabilityOmitsBookedSlots(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, BookParams{
		ServiceID:     "svc-1",
		UserID:        "user-1",
		ScheduledDate: openDate,
		ScheduledTime: "10:00",
	})
	require.NoError(t, err)

	day, err := svc.DayAvailability(ctx, "svc-1", openDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, day.Slots)
}

func TestDayAvailabilityClosedDayIsEmpty(t *testing.T) {
	svc, _ := fixtureScheduler(t)

	day, err := svc.DayAvailability(context.Background(), "svc-1", closedDate)
	require.NoError(t, err)
	assert.Empty(t, day.Slots)
}

func TestDayAvailabilityRejectsMalformedDate(t *testing.T) {
	svc, _ := fixtureScheduler(t)

	_, err := svc.DayAvailability(context.Background(), "svc-1", "06/04/2026")
	assert.ErrorIs(t, err, domainbooking.ErrBadDate)
}

func TestBookPublishesRequestedEvent(t *testing.T) {
	svc, publisher := fixtureScheduler(t)

	booking, err := svc.Book(context.Background(), BookParams{
		ServiceID:     "svc-1",
		UserID:        "user-1",
		ScheduledDate: openDate,
		ScheduledTime: "09:00",
		Notes:         "chain skips under load",
	})
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, booking.Status)
	assert.Equal(t, int64(12000), booking.Price)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, EventBookingRequested, event.Type)
	assert.Equal(t, string(booking.ID), event.BookingID)
	assert.Equal(t, "09:00", event.Time)
}

func TestBookTakenSlotConflicts(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-2",
		ScheduledDate: openDate, ScheduledTime: "10:00",
	})
	assert.ErrorIs(t, err, domainbooking.ErrSlotTaken)
}

func TestBookRejectsOffGridTime(t *testing.T) {
	svc, _ := fixtureScheduler(t)

	_, err := svc.Book(context.Background(), BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:30",
	})
	assert.ErrorIs(t, err, ErrSlotNotOffered)

	// Closing time itself is not a bookable start.
	_, err = svc.Book(context.Background(), BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "12:00",
	})
	assert.ErrorIs(t, err, ErrSlotNotOffered)
}

func TestBookInactiveServiceUnavailable(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	offer, err := svc.Services.ByID(ctx, "svc-1")
	require.NoError(t, err)
	offer.Deactivate(time.Now())
	require.NoError(t, svc.Services.Save(ctx, offer))

	_, err = svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestCancelAllowsBothParticipants(t *testing.T) {
	svc, publisher := fixtureScheduler(t)
	ctx := context.Background()

	booking, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, booking.ID, "somebody-else")
	assert.ErrorIs(t, err, ErrNotParticipant)

	cancelled, err := svc.Cancel(ctx, booking.ID, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, cancelled.Status)
	assert.Equal(t, EventBookingCancelled, publisher.events[len(publisher.events)-1].Type)
}

func TestCancelInsideWindowRefused(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	booking, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)

	// 23 hours before the appointment.
	svc.Clock = func() time.Time { return time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC) }
	_, err = svc.Cancel(ctx, booking.ID, "user-1")
	assert.ErrorIs(t, err, domainbooking.ErrTooLateToCancel)
}

func TestRescheduleMovesToFreeSlot(t *testing.T) {
	svc, publisher := fixtureScheduler(t)
	ctx := context.Background()

	booking, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)

	moved, err := svc.Reschedule(ctx, booking.ID, "user-1", openDate, "11:00")
	require.NoError(t, err)
	assert.Equal(t, "11:00", moved.ScheduledTime)
	assert.Equal(t, EventBookingRescheduled, publisher.events[len(publisher.events)-1].Type)

	day, err := svc.DayAvailability(ctx, "svc-1", openDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00"}, day.Slots)
}

func TestRescheduleRejectsTakenTarget(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	first, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)
	_, err = svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-2",
		ScheduledDate: openDate, ScheduledTime: "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, first.ID, "user-1", openDate, "10:00")
	assert.ErrorIs(t, err, domainbooking.ErrSlotTaken)
}

func TestProviderTransitions(t *testing.T) {
	svc, publisher := fixtureScheduler(t)
	ctx := context.Background()

	booking, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, booking.ID, "other-provider", "")
	assert.ErrorIs(t, err, ErrNotParticipant)

	confirmed, err := svc.Confirm(ctx, booking.ID, "prov-1", "bring the spare key")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, confirmed.Status)

	completed, err := svc.Complete(ctx, booking.ID, "prov-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCompleted, completed.Status)

	types := make([]string, 0, len(publisher.events))
	for _, event := range publisher.events {
		types = append(types, event.Type)
	}
	assert.Equal(t, []string{EventBookingRequested, EventBookingConfirmed, EventBookingCompleted}, types)
}

func TestProviderDashboardCountsStatuses(t *testing.T) {
	svc, _ := fixtureScheduler(t)
	ctx := context.Background()

	first, err := svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-1",
		ScheduledDate: openDate, ScheduledTime: "09:00",
	})
	require.NoError(t, err)
	_, err = svc.Book(ctx, BookParams{
		ServiceID: "svc-1", UserID: "user-2",
		ScheduledDate: openDate, ScheduledTime: "10:00",
	})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, first.ID, "prov-1", "")
	require.NoError(t, err)

	dashboard, err := svc.ProviderDashboard(ctx, "prov-1")
	require.NoError(t, err)
	assert.Len(t, dashboard.Bookings, 2)
	assert.Equal(t, 1, dashboard.StatusCounts[string(domainbooking.StatusPending)])
	assert.Equal(t, 1, dashboard.StatusCounts[string(domainbooking.StatusConfirmed)])
}
