// Package availability turns weekly open-hours schedules into bookable time
// slots. All computations are pure; callers fetch schedules and existing
// bookings first and feed them in.
package availability

import (
	"errors"
	"fmt"
)

var (
	ErrBadClock      = errors.New("availability: clock value must be HH:MM in 24-hour format")
	ErrHoursInverted = errors.New("availability: start must be before end")
	ErrBadStep       = errors.New("availability: slot duration must be positive")
)

// Clock is a time of day in minutes since midnight.
type Clock int

// ParseClock parses a 24-hour "HH:MM" string. All four digit positions must
// be ASCII digits; partial matches like "09:5a" are rejected.
func ParseClock(value string) (Clock, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, ErrBadClock
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return 0, ErrBadClock
		}
	}
	hours := int(value[0]-'0')*10 + int(value[1]-'0')
	minutes := int(value[3]-'0')*10 + int(value[4]-'0')
	if hours > 23 || minutes > 59 {
		return 0, ErrBadClock
	}
	return Clock(hours*60 + minutes), nil
}

// MustClock is a fixture helper; it panics on malformed input.
func MustClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// DayHours are the open hours of a single weekday.
type DayHours struct {
	Open  bool
	Start Clock
	End   Clock
}

// Validate checks the open-hours invariant. Closed days are always valid.
func (h DayHours) Validate() error {
	if !h.Open {
		return nil
	}
	if h.Start >= h.End {
		return ErrHoursInverted
	}
	return nil
}

// Slots generates every candidate slot start for the day, stepping by
// stepMinutes from opening. Only starts strictly before closing count, so a
// slot beginning at the closing time is excluded.
func Slots(hours DayHours, stepMinutes int) ([]Clock, error) {
	if stepMinutes <= 0 {
		return nil, ErrBadStep
	}
	if !hours.Open {
		return nil, nil
	}
	if err := hours.Validate(); err != nil {
		return nil, err
	}
	var out []Clock
	for t := hours.Start; t < hours.End; t += Clock(stepMinutes) {
		out = append(out, t)
	}
	return out, nil
}

// Exclude removes every slot whose start exactly matches a booked time,
// preserving order. Booked times that do not line up with a generated slot
// are ignored.
func Exclude(slots []Clock, booked []Clock) []Clock {
	if len(booked) == 0 {
		return slots
	}
	taken := make(map[Clock]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}
	out := make([]Clock, 0, len(slots))
	for _, s := range slots {
		if _, ok := taken[s]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// FreeSlots is the full engine: generate the day's slots and drop the booked
// ones. Booked times arrive as "HH:MM" strings straight from stored
// bookings; malformed entries are skipped rather than blocking a slot.
func FreeSlots(hours DayHours, stepMinutes int, booked []string) ([]string, error) {
	slots, err := Slots(hours, stepMinutes)
	if err != nil {
		return nil, err
	}
	taken := make([]Clock, 0, len(booked))
	for _, raw := range booked {
		c, err := ParseClock(raw)
		if err != nil {
			continue
		}
		taken = append(taken, c)
	}
	return Format(Exclude(slots, taken)), nil
}

// Format renders slots as "HH:MM" strings.
func Format(slots []Clock) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
