package scheduling

import (
	"errors"
	"time"
)

// Validation errors carry the exact user-facing message for the first
// failing rule.
var (
	ErrNotWeekday    = errors.New("Times can only be blocked on weekdays (Monday through Friday).")
	ErrOutsideWindow = errors.New("Times can only be blocked between 9:00 AM and 3:45 PM.")
	ErrOffGrid       = errors.New("Times must be on 15-minute boundaries.")
	ErrLunchClosure  = errors.New("12:00 PM to 1:00 PM is reserved for lunch and is always blocked.")
	ErrNotFuture     = errors.New("Appointments must be scheduled for a future time.")
	ErrBeyondHorizon = errors.New("Appointments can only be booked up to 14 days in advance.")
	ErrUnknownType   = errors.New("Unknown appointment type.")
	ErrNotesTooLong  = errors.New("Notes must be 500 characters or fewer.")
)

// Rules holds the immutable business-rule constants for the slot engine.
// Time-of-day fields are offsets from local midnight. Tests inject variants;
// production uses DefaultRules.
type Rules struct {
	Grid       time.Duration
	Open       time.Duration
	LastStart  time.Duration
	DayClose   time.Duration
	LunchStart time.Duration
	LunchEnd   time.Duration

	BookingHorizon time.Duration
	ListingRange   time.Duration

	DefaultCalendarDays int
	MaxCalendarDays     int

	AdminDomain string
	MaxNotesLen int

	// Catalog maps an appointment type tag to its fixed duration. Durations
	// come from here, never from client input.
	Catalog map[string]time.Duration

	// BlockedType is the sentinel type tag stored on blocked times.
	BlockedType string
}

// DefaultRules returns the health center's standing configuration: a
// 15-minute grid, weekday business hours 9:00-16:00 with the last slot at
// 15:45, lunch closed 12:00-13:00, and a 14-day booking horizon.
func DefaultRules() Rules {
	return Rules{
		Grid:       15 * time.Minute,
		Open:       9 * time.Hour,
		LastStart:  15*time.Hour + 45*time.Minute,
		DayClose:   16 * time.Hour,
		LunchStart: 12 * time.Hour,
		LunchEnd:   13 * time.Hour,

		BookingHorizon: 14 * 24 * time.Hour,
		ListingRange:   28 * 24 * time.Hour,

		DefaultCalendarDays: 14,
		MaxCalendarDays:     28,

		AdminDomain: "@admin.edu",
		MaxNotesLen: 500,

		Catalog: map[string]time.Duration{
			"general":    15 * time.Minute,
			"testing":    30 * time.Minute,
			"counseling": 60 * time.Minute,
		},

		BlockedType: "blocked",
	}
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// inLunch reports whether the interval [tod, tod+duration) touches the lunch
// closure window.
func (r Rules) inLunch(tod, duration time.Duration) bool {
	return tod < r.LunchEnd && r.LunchStart < tod+duration
}

// ValidateSlotStart applies the weekday, business-window, grid-alignment and
// lunch-closure rules shared by blocking and booking, in fixed order. The
// first failing rule wins. A booking's full interval must also fit before
// day close and clear of lunch.
func (r Rules) ValidateSlotStart(start time.Time, duration time.Duration) error {
	if isWeekend(start) {
		return ErrNotWeekday
	}
	tod := timeOfDay(start)
	if tod < r.Open || tod > r.LastStart || tod+duration > r.DayClose {
		return ErrOutsideWindow
	}
	if start.Minute()%int(r.Grid/time.Minute) != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return ErrOffGrid
	}
	if r.inLunch(tod, duration) {
		return ErrLunchClosure
	}
	return nil
}

// ValidateBookingWindow enforces the booking-only rules: the start must be
// strictly future and within the booking horizon.
func (r Rules) ValidateBookingWindow(now, start time.Time) error {
	if !start.After(now) {
		return ErrNotFuture
	}
	if !start.Before(now.Add(r.BookingHorizon)) {
		return ErrBeyondHorizon
	}
	return nil
}

// TypeDuration resolves an appointment type tag against the catalog.
func (r Rules) TypeDuration(typeTag string) (time.Duration, error) {
	dur, ok := r.Catalog[typeTag]
	if !ok {
		return 0, ErrUnknownType
	}
	return dur, nil
}
