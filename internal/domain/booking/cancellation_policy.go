package booking

import (
	"errors"
	"time"
)

var (
	ErrTooLateToCancel     = errors.New("booking: cannot cancel less than 24 hours before the appointment")
	ErrTooLateToReschedule = errors.New("booking: cannot reschedule less than 24 hours before the appointment")
)

// cancellationWindow is the minimum lead time for cancelling or rescheduling.
const cancellationWindow = 24 * time.Hour

// CanBeCancelled reports whether the booking may still be cancelled at the
// given instant: not completed or already cancelled, and more than 24 hours
// before the scheduled time. A booking whose schedule fails to parse is
// treated as non-cancellable.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if b.Status == StatusCompleted || b.Status == StatusCancelled {
		return false
	}
	return b.outsideWindow(now)
}

// CanBeRescheduled reports whether the booking may be moved: only pending or
// confirmed bookings qualify, with the same 24-hour lead time and the same
// fail-closed parse behavior.
func (b *Booking) CanBeRescheduled(now time.Time) bool {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return false
	}
	return b.outsideWindow(now)
}

func (b *Booking) outsideWindow(now time.Time) bool {
	at, err := b.ScheduledAt()
	if err != nil {
		return false
	}
	return at.Sub(now.UTC()) > cancellationWindow
}
