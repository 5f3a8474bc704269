package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/healthcenter/healthcenter/internal/platform/auth"
)

// Operation errors returned by the slot engine.
var (
	ErrEmailRequired       = errors.New("Student email is required.")
	ErrBlockNotAdmin       = errors.New("Only admins can block appointment times.")
	ErrUnblockNotAdmin     = errors.New("Only admins can unblock appointment times.")
	ErrBookNotStudent      = errors.New("Only students can book appointments.")
	ErrCancelNotStudent    = errors.New("Only students can cancel appointments.")
	ErrNotesNotStudent     = errors.New("Only students can update appointment notes.")
	ErrListNotStudent      = errors.New("Only students can view their own appointments.")
	ErrTimeBlocked         = errors.New("This time is already blocked.")
	ErrTimeBooked          = errors.New("This time is already booked.")
	ErrBlockedNotFound     = errors.New("Blocked time not found.")
	ErrAppointmentNotFound = errors.New("Appointment not found.")
	ErrNotYourAppointment  = errors.New("You can only cancel your own appointments.")
	ErrNotYourNotes        = errors.New("You can only update notes for your own appointments.")
	ErrNotUpcoming         = errors.New("Only upcoming appointments can be updated.")
	ErrStoreUnavailable    = errors.New("Database unavailable. Verify DATABASE_URL and Postgres credentials.")
)

// StatusBooked is the only appointment status the engine writes.
const StatusBooked = "booked"

// TxRunner runs fn inside one transaction; any error rolls the transaction
// back. Production wires db.WithSerializableTx, tests pass fn through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service is the slot engine. Availability is a pure function of (now,
// blocked set, booked set, rules); nothing about slots is ever stored or
// cached across requests.
type Service struct {
	blocked      BlockedTimeRepository
	appointments AppointmentRepository
	rules        Rules
	tx           TxRunner
	now          func() time.Time
}

// NewService builds a Service. A nil now defaults to time.Now.
func NewService(blocked BlockedTimeRepository, appointments AppointmentRepository, rules Rules, tx TxRunner, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		blocked:      blocked,
		appointments: appointments,
		rules:        rules,
		tx:           tx,
		now:          now,
	}
}

// Rules exposes the engine's active configuration.
func (s *Service) Rules() Rules { return s.rules }

func storeErr(err error) error {
	return fmt.Errorf("%w (%v)", ErrStoreUnavailable, err)
}

// -- Availability --

// OpenSlots computes the open grid-length slots over the full listing range.
func (s *Service) OpenSlots(ctx context.Context) ([]Slot, error) {
	return s.deriveSlots(ctx, s.rules.ListingRange, s.rules.Grid, "")
}

// TypeSlots computes type-aware slots over the given number of days, clamped
// to [1, MaxCalendarDays]. The type's catalog duration must keep the whole
// appointment inside business hours and out of lunch.
func (s *Service) TypeSlots(ctx context.Context, days int, typeTag string) ([]Slot, error) {
	if days <= 0 {
		days = s.rules.DefaultCalendarDays
	}
	if days > s.rules.MaxCalendarDays {
		days = s.rules.MaxCalendarDays
	}
	dur, err := s.rules.TypeDuration(typeTag)
	if err != nil {
		return nil, err
	}
	return s.deriveSlots(ctx, time.Duration(days)*24*time.Hour, dur, typeTag)
}

// deriveSlots walks the weekday grid over [now, now+horizon) and emits every
// candidate start whose full duration avoids blocked starts, booked starts
// and the lunch window. Results are ascending by start time.
func (s *Service) deriveSlots(ctx context.Context, horizon, duration time.Duration, typeTag string) ([]Slot, error) {
	now := s.now()
	rangeEnd := now.Add(horizon)

	blocked, err := s.blocked.ListOverlapping(ctx, Interval{Start: now, End: rangeEnd})
	if err != nil {
		return nil, storeErr(err)
	}
	booked, err := s.appointments.ListOverlapping(ctx, Interval{Start: now, End: rangeEnd})
	if err != nil {
		return nil, storeErr(err)
	}

	taken := make(map[int64]bool)
	for _, b := range blocked {
		for _, t := range SlotStarts(b.StartTime, b.EndTime, s.rules.Grid) {
			taken[t.Unix()] = true
		}
	}
	for _, a := range booked {
		for _, t := range SlotStarts(a.StartTime, a.EndTime, s.rules.Grid) {
			taken[t.Unix()] = true
		}
	}

	slots := []Slot{}
	for day := midnight(now); day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		if isWeekend(day) {
			continue
		}
		for tod := s.rules.Open; tod <= s.rules.LastStart && tod+duration <= s.rules.DayClose; tod += s.rules.Grid {
			start := day.Add(tod)
			if !start.After(now) || !start.Before(rangeEnd) {
				continue
			}
			if s.rules.inLunch(tod, duration) {
				continue
			}
			free := true
			for tick := int64(0); tick < int64(duration/s.rules.Grid); tick++ {
				if taken[start.Add(time.Duration(tick)*s.rules.Grid).Unix()] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			slots = append(slots, Slot{
				StartTime:       start,
				EndTime:         start.Add(duration),
				DurationMinutes: int(duration / time.Minute),
				AppointmentType: typeTag,
			})
		}
	}
	return slots, nil
}

// -- Booking --

// BookingRequest is a student's booking command.
type BookingRequest struct {
	StudentEmail    string
	AppointmentType string
	Start           time.Time
	Notes           string
}

// Book validates the request and atomically reserves the interval: the
// overlap checks against both collections and the insert share one
// transaction, so a concurrent booking of the same window fails at commit
// rather than double-booking.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	email := auth.NormalizeEmail(req.StudentEmail)
	if email == "" {
		return nil, ErrEmailRequired
	}
	notes, err := s.normalizeNotes(req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.rules.ValidateSlotStart(req.Start, s.rules.Grid); err != nil {
		return nil, err
	}
	if err := s.rules.ValidateBookingWindow(s.now(), req.Start); err != nil {
		return nil, err
	}
	if auth.IsAdmin(email, s.rules.AdminDomain) {
		return nil, ErrBookNotStudent
	}
	dur, err := s.rules.TypeDuration(req.AppointmentType)
	if err != nil {
		return nil, err
	}
	// The full interval for longer types must still fit the business window.
	if err := s.rules.ValidateSlotStart(req.Start, dur); err != nil {
		return nil, err
	}

	appt := &Appointment{
		StudentEmail:    email,
		AppointmentType: req.AppointmentType,
		Status:          StatusBooked,
		StartTime:       req.Start,
		EndTime:         req.Start.Add(dur),
		Notes:           notes,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		return s.checkAndInsert(ctx, appt.Interval(), func(ctx context.Context) error {
			return s.appointments.Create(ctx, appt)
		})
	})
	if err != nil {
		return nil, err
	}
	appt.fillDuration()
	return appt, nil
}

// checkAndInsert runs the shared conflict check, then the insert, inside the
// caller's transaction scope.
func (s *Service) checkAndInsert(ctx context.Context, iv Interval, insert func(ctx context.Context) error) error {
	blocked, err := s.blocked.ListOverlapping(ctx, iv)
	if err != nil {
		return storeErr(err)
	}
	if len(blocked) > 0 {
		return ErrTimeBlocked
	}
	booked, err := s.appointments.ListOverlapping(ctx, iv)
	if err != nil {
		return storeErr(err)
	}
	if len(booked) > 0 {
		return ErrTimeBooked
	}
	if err := insert(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// -- Blocking --

// Block reserves one grid unit as blocked. Admin only; blocked time may not
// overlap existing blocked times or appointments.
func (s *Service) Block(ctx context.Context, adminEmail string, start time.Time) (*BlockedTime, error) {
	if err := s.rules.ValidateSlotStart(start, s.rules.Grid); err != nil {
		return nil, err
	}
	if !auth.IsAdmin(adminEmail, s.rules.AdminDomain) {
		return nil, ErrBlockNotAdmin
	}

	b := &BlockedTime{
		SlotType:  s.rules.BlockedType,
		StartTime: start,
		EndTime:   start.Add(s.rules.Grid),
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		return s.checkAndInsert(ctx, b.Interval(), func(ctx context.Context) error {
			return s.blocked.Create(ctx, b)
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Unblock hard-deletes a blocked time by id and sentinel type tag. Admin
// only; appointments are never deleted through this path.
func (s *Service) Unblock(ctx context.Context, adminEmail string, id uuid.UUID) error {
	if !auth.IsAdmin(adminEmail, s.rules.AdminDomain) {
		return ErrUnblockNotAdmin
	}
	found, err := s.blocked.DeleteByIDAndType(ctx, id, s.rules.BlockedType)
	if err != nil {
		return storeErr(err)
	}
	if !found {
		return ErrBlockedNotFound
	}
	return nil
}

// -- Cancellation --

// Cancel hard-deletes the student's own appointment. The freed interval is
// immediately bookable again.
func (s *Service) Cancel(ctx context.Context, studentEmail string, id uuid.UUID) error {
	email := auth.NormalizeEmail(studentEmail)
	if email == "" {
		return ErrEmailRequired
	}
	if auth.IsAdmin(email, s.rules.AdminDomain) {
		return ErrCancelNotStudent
	}

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if appt == nil {
		return ErrAppointmentNotFound
	}
	if appt.StudentEmail != email {
		return ErrNotYourAppointment
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// -- Notes --

// UpdateNotes replaces the notes on the student's own upcoming appointment.
// Scheduling state (start, end, type, status) is untouched.
func (s *Service) UpdateNotes(ctx context.Context, studentEmail string, id uuid.UUID, rawNotes string) (*Appointment, error) {
	email := auth.NormalizeEmail(studentEmail)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if auth.IsAdmin(email, s.rules.AdminDomain) {
		return nil, ErrNotesNotStudent
	}
	notes, err := s.normalizeNotes(rawNotes)
	if err != nil {
		return nil, err
	}

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.StudentEmail != email {
		return nil, ErrNotYourNotes
	}
	if !appt.StartTime.After(s.now()) {
		return nil, ErrNotUpcoming
	}

	if err := s.appointments.UpdateNotes(ctx, id, notes); err != nil {
		return nil, storeErr(err)
	}
	appt.Notes = notes
	return appt, nil
}

// normalizeNotes trims notes, maps blank to absent, and bounds the length.
func (s *Service) normalizeNotes(raw string) (*string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > s.rules.MaxNotesLen {
		return nil, ErrNotesTooLong
	}
	return &trimmed, nil
}

// -- Projections --

// ListBlocked returns the blocked times that have not yet ended, ascending.
func (s *Service) ListBlocked(ctx context.Context) ([]*BlockedTime, error) {
	items, err := s.blocked.ListFrom(ctx, s.now())
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// ListAppointments returns all appointments that have not yet ended,
// ascending, paginated. Admin projection; gated at the routing layer.
func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.appointments.ListFrom(ctx, s.now(), limit, offset)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

// ListStudentAppointments returns a student's own appointments, ascending.
func (s *Service) ListStudentAppointments(ctx context.Context, studentEmail string) ([]*Appointment, error) {
	email := auth.NormalizeEmail(studentEmail)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if auth.IsAdmin(email, s.rules.AdminDomain) {
		return nil, ErrListNotStudent
	}
	items, err := s.appointments.ListByStudent(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// Catalog lists the appointment types and their durations, shortest first.
func (s *Service) Catalog() []AppointmentType {
	types := make([]AppointmentType, 0, len(s.rules.Catalog))
	for tag, dur := range s.rules.Catalog {
		types = append(types, AppointmentType{Type: tag, DurationMinutes: int(dur / time.Minute)})
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].DurationMinutes != types[j].DurationMinutes {
			return types[i].DurationMinutes < types[j].DurationMinutes
		}
		return types[i].Type < types[j].Type
	})
	return types
}
