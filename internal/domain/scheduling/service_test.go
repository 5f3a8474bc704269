package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockBlockedRepo struct {
	items map[uuid.UUID]*BlockedTime
	err   error
}

func newMockBlockedRepo() *mockBlockedRepo {
	return &mockBlockedRepo{items: make(map[uuid.UUID]*BlockedTime)}
}

func (m *mockBlockedRepo) Create(_ context.Context, b *BlockedTime) error {
	if m.err != nil {
		return m.err
	}
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	m.items[b.ID] = b
	return nil
}

func (m *mockBlockedRepo) DeleteByIDAndType(_ context.Context, id uuid.UUID, slotType string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	b, ok := m.items[id]
	if !ok || b.SlotType != slotType {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *mockBlockedRepo) ListOverlapping(_ context.Context, iv Interval) ([]*BlockedTime, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*BlockedTime
	for _, b := range m.items {
		if b.Interval().Overlaps(iv) {
			result = append(result, b)
		}
	}
	sortBlocked(result)
	return result, nil
}

func (m *mockBlockedRepo) ListFrom(_ context.Context, from time.Time) ([]*BlockedTime, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*BlockedTime
	for _, b := range m.items {
		if b.EndTime.After(from) {
			result = append(result, b)
		}
	}
	sortBlocked(result)
	return result, nil
}

func sortBlocked(items []*BlockedTime) {
	sort.Slice(items, func(i, j int) bool { return items[i].StartTime.Before(items[j].StartTime) })
}

type mockApptRepo struct {
	items map[uuid.UUID]*Appointment
	err   error
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{items: make(map[uuid.UUID]*Appointment)}
}

func (m *mockApptRepo) Create(_ context.Context, a *Appointment) error {
	if m.err != nil {
		return m.err
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	a.fillDuration()
	m.items[a.ID] = a
	return nil
}

func (m *mockApptRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (m *mockApptRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	delete(m.items, id)
	return nil
}

func (m *mockApptRepo) UpdateNotes(_ context.Context, id uuid.UUID, notes *string) error {
	if m.err != nil {
		return m.err
	}
	if a, ok := m.items[id]; ok {
		a.Notes = notes
		a.UpdatedAt = time.Now()
	}
	return nil
}

func (m *mockApptRepo) ListOverlapping(_ context.Context, iv Interval) ([]*Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*Appointment
	for _, a := range m.items {
		if a.Interval().Overlaps(iv) {
			result = append(result, a)
		}
	}
	sortAppts(result)
	return result, nil
}

func (m *mockApptRepo) ListFrom(_ context.Context, from time.Time, limit, offset int) ([]*Appointment, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var result []*Appointment
	for _, a := range m.items {
		if a.EndTime.After(from) {
			result = append(result, a)
		}
	}
	sortAppts(result)
	total := len(result)
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *mockApptRepo) ListByStudent(_ context.Context, studentEmail string) ([]*Appointment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*Appointment
	for _, a := range m.items {
		if a.StudentEmail == studentEmail {
			result = append(result, a)
		}
	}
	sortAppts(result)
	return result, nil
}

func sortAppts(items []*Appointment) {
	sort.Slice(items, func(i, j int) bool { return items[i].StartTime.Before(items[j].StartTime) })
}

// -- Tests --

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mondayMorning is before opening on Monday 2026-01-05.
var mondayMorning = time.Date(2026, 1, 5, 8, 0, 0, 0, time.Local)

func newTestService(now time.Time) (*Service, *mockBlockedRepo, *mockApptRepo) {
	blocked := newMockBlockedRepo()
	appts := newMockApptRepo()
	svc := NewService(blocked, appts, DefaultRules(), passthroughTx, clockAt(now))
	return svc, blocked, appts
}

// -- Booking --

func TestBook(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    " Alice@Example.EDU ",
		AppointmentType: "testing",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.StudentEmail != "alice@example.edu" {
		t.Errorf("email not normalized: %q", appt.StudentEmail)
	}
	if appt.Status != StatusBooked {
		t.Errorf("status = %q, want %q", appt.Status, StatusBooked)
	}
	if !appt.EndTime.Equal(monday(9, 30)) {
		t.Errorf("end = %v, want 09:30", appt.EndTime)
	}
	if appt.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30", appt.DurationMinutes)
	}
	if appt.Notes != nil {
		t.Errorf("blank notes should be absent, got %v", *appt.Notes)
	}
}

func TestBook_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  BookingRequest
		want error
	}{
		{"blank email", BookingRequest{StudentEmail: "  ", AppointmentType: "general", Start: monday(9, 0)}, ErrEmailRequired},
		{"weekend", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: time.Date(2026, 1, 10, 9, 0, 0, 0, time.Local)}, ErrNotWeekday},
		{"before open", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(8, 30)}, ErrOutsideWindow},
		{"off grid", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(9, 5)}, ErrOffGrid},
		{"lunch", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(12, 15)}, ErrLunchClosure},
		{"beyond horizon", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(9, 0).AddDate(0, 0, 14)}, ErrBeyondHorizon},
		{"admin booking", BookingRequest{StudentEmail: "boss@admin.edu", AppointmentType: "general", Start: monday(9, 0)}, ErrBookNotStudent},
		{"unknown type", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "massage", Start: monday(9, 0)}, ErrUnknownType},
		{"notes too long", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(9, 0), Notes: strings.Repeat("x", 501)}, ErrNotesTooLong},
		{"counseling into lunch", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "counseling", Start: monday(11, 30)}, ErrLunchClosure},
		{"counseling past close", BookingRequest{StudentEmail: "a@example.edu", AppointmentType: "counseling", Start: monday(15, 30)}, ErrOutsideWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(mondayMorning)
			if _, err := svc.Book(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBook_NotFuture(t *testing.T) {
	svc, _, _ := newTestService(monday(10, 0))

	_, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 15),
	})
	if !errors.Is(err, ErrNotFuture) {
		t.Errorf("got %v, want ErrNotFuture", err)
	}
}

func TestBook_ConflictWithBlocked(t *testing.T) {
	svc, blocked, _ := newTestService(mondayMorning)
	blocked.Create(context.Background(), &BlockedTime{
		SlotType:  "blocked",
		StartTime: monday(9, 0),
		EndTime:   monday(9, 15),
	})

	_, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "testing",
		Start:           monday(9, 0),
	})
	if !errors.Is(err, ErrTimeBlocked) {
		t.Errorf("got %v, want ErrTimeBlocked", err)
	}
}

func TestBook_ConflictWithOverlappingBooking(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "testing",
		Start:           monday(9, 0),
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// 09:15 falls inside the 09:00-09:30 testing appointment.
	_, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "b@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 15),
	})
	if !errors.Is(err, ErrTimeBooked) {
		t.Errorf("got %v, want ErrTimeBooked", err)
	}
}

func TestBook_CancelReopensSlot(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	first, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "testing",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	second := BookingRequest{
		StudentEmail:    "b@example.edu",
		AppointmentType: "testing",
		Start:           monday(9, 15),
	}
	if _, err := svc.Book(context.Background(), second); !errors.Is(err, ErrTimeBooked) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if err := svc.Cancel(context.Background(), "a@example.edu", first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := svc.Book(context.Background(), second); err != nil {
		t.Errorf("rebooking after cancel failed: %v", err)
	}
}

func TestBook_StoreFailure(t *testing.T) {
	svc, blocked, _ := newTestService(mondayMorning)
	blocked.err = errors.New("connection refused")

	_, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("got %v, want ErrStoreUnavailable", err)
	}
}

// -- Blocking --

func TestBlock(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	b, err := svc.Block(context.Background(), "boss@admin.edu", monday(10, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SlotType != "blocked" {
		t.Errorf("slot type = %q, want blocked", b.SlotType)
	}
	if !b.EndTime.Equal(monday(10, 15)) {
		t.Errorf("blocked time should span one grid unit, end = %v", b.EndTime)
	}
}

func TestBlock_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  error
	}{
		{"noon is lunch", monday(12, 0), ErrLunchClosure},
		{"last start accepted", monday(15, 45), nil},
		{"day close rejected", monday(16, 0), ErrOutsideWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(mondayMorning)
			_, err := svc.Block(context.Background(), "boss@admin.edu", tt.start)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBlock_NotAdmin(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	_, err := svc.Block(context.Background(), "student@example.edu", monday(10, 0))
	if !errors.Is(err, ErrBlockNotAdmin) {
		t.Errorf("got %v, want ErrBlockNotAdmin", err)
	}
}

func TestBlock_ConflictWithBooking(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "counseling",
		Start:           monday(9, 0),
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// 09:45 sits inside the 09:00-10:00 counseling appointment.
	_, err := svc.Block(context.Background(), "boss@admin.edu", monday(9, 45))
	if !errors.Is(err, ErrTimeBooked) {
		t.Errorf("got %v, want ErrTimeBooked", err)
	}
}

func TestBlock_ConflictWithBlocked(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.Block(context.Background(), "boss@admin.edu", monday(10, 0)); err != nil {
		t.Fatalf("first block failed: %v", err)
	}
	_, err := svc.Block(context.Background(), "boss@admin.edu", monday(10, 0))
	if !errors.Is(err, ErrTimeBlocked) {
		t.Errorf("got %v, want ErrTimeBlocked", err)
	}
}

func TestUnblock(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	b, err := svc.Block(context.Background(), "boss@admin.edu", monday(10, 0))
	if err != nil {
		t.Fatalf("block failed: %v", err)
	}

	if err := svc.Unblock(context.Background(), "boss@admin.edu", b.ID); err != nil {
		t.Fatalf("unblock failed: %v", err)
	}
	if err := svc.Unblock(context.Background(), "boss@admin.edu", b.ID); !errors.Is(err, ErrBlockedNotFound) {
		t.Errorf("second unblock: got %v, want ErrBlockedNotFound", err)
	}
}

func TestUnblock_NotAdmin(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	err := svc.Unblock(context.Background(), "student@example.edu", uuid.New())
	if !errors.Is(err, ErrUnblockNotAdmin) {
		t.Errorf("got %v, want ErrUnblockNotAdmin", err)
	}
}

func TestUnblock_NeverDeletesAppointments(t *testing.T) {
	svc, _, appts := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if err := svc.Unblock(context.Background(), "boss@admin.edu", appt.ID); !errors.Is(err, ErrBlockedNotFound) {
		t.Errorf("got %v, want ErrBlockedNotFound", err)
	}
	if _, ok := appts.items[appt.ID]; !ok {
		t.Error("appointment was deleted through the unblock path")
	}
}

// -- Cancellation --

func TestCancel_Errors(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	tests := []struct {
		name  string
		email string
		id    uuid.UUID
		want  error
	}{
		{"blank email", "  ", appt.ID, ErrEmailRequired},
		{"admin email", "boss@admin.edu", appt.ID, ErrCancelNotStudent},
		{"not found", "a@example.edu", uuid.New(), ErrAppointmentNotFound},
		{"non-owner", "b@example.edu", appt.ID, ErrNotYourAppointment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Cancel(context.Background(), tt.email, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

// -- Notes --

func TestUpdateNotes(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	updated, err := svc.UpdateNotes(context.Background(), "a@example.edu", appt.ID, "  follow-up on labs  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != "follow-up on labs" {
		t.Errorf("notes not trimmed and stored: %v", updated.Notes)
	}

	cleared, err := svc.UpdateNotes(context.Background(), "a@example.edu", appt.ID, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.Notes != nil {
		t.Errorf("blank notes should clear the field, got %v", *cleared.Notes)
	}
}

func TestUpdateNotes_Errors(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	tests := []struct {
		name  string
		email string
		id    uuid.UUID
		notes string
		want  error
	}{
		{"blank email", "", appt.ID, "hi", ErrEmailRequired},
		{"admin email", "boss@admin.edu", appt.ID, "hi", ErrNotesNotStudent},
		{"too long", "a@example.edu", appt.ID, strings.Repeat("x", 501), ErrNotesTooLong},
		{"not found", "a@example.edu", uuid.New(), "hi", ErrAppointmentNotFound},
		{"non-owner", "b@example.edu", appt.ID, "hi", ErrNotYourNotes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.UpdateNotes(context.Background(), tt.email, tt.id, tt.notes); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdateNotes_PastAppointment(t *testing.T) {
	svc, _, appts := newTestService(mondayMorning)

	appt, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "general",
		Start:           monday(9, 0),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// Move the clock past the appointment start.
	late := NewService(svc.blocked, appts, DefaultRules(), passthroughTx, clockAt(monday(9, 30)))
	if _, err := late.UpdateNotes(context.Background(), "a@example.edu", appt.ID, "too late"); !errors.Is(err, ErrNotUpcoming) {
		t.Errorf("got %v, want ErrNotUpcoming", err)
	}
}

// -- Availability --

func TestOpenSlots_Properties(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)
	rules := svc.Rules()

	slots, err := svc.OpenSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected open slots")
	}

	prev := time.Time{}
	for _, sl := range slots {
		if isWeekend(sl.StartTime) {
			t.Errorf("slot on weekend: %v", sl.StartTime)
		}
		if sl.StartTime.Minute()%15 != 0 {
			t.Errorf("slot off grid: %v", sl.StartTime)
		}
		tod := timeOfDay(sl.StartTime)
		if tod < rules.Open || tod > rules.LastStart {
			t.Errorf("slot outside hours: %v", sl.StartTime)
		}
		if rules.inLunch(tod, rules.Grid) {
			t.Errorf("slot in lunch window: %v", sl.StartTime)
		}
		if !sl.StartTime.After(mondayMorning) {
			t.Errorf("slot not in the future: %v", sl.StartTime)
		}
		if sl.StartTime.Before(prev) {
			t.Errorf("slots out of order at %v", sl.StartTime)
		}
		prev = sl.StartTime
	}
}

func TestOpenSlots_FullWeekday(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	slots, err := svc.OpenSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00-15:45 is 28 grid ticks; lunch removes 12:00-12:45 inclusive.
	var today int
	for _, sl := range slots {
		if sl.StartTime.Day() == 5 {
			today++
		}
	}
	if today != 24 {
		t.Errorf("expected 24 open slots on an empty weekday, got %d", today)
	}

	if !slots[0].StartTime.Equal(monday(9, 0)) {
		t.Errorf("first slot = %v, want 09:00", slots[0].StartTime)
	}
}

func TestOpenSlots_ExcludesBlockedAndBooked(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.Block(context.Background(), "boss@admin.edu", monday(9, 0)); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if _, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail:    "a@example.edu",
		AppointmentType: "counseling",
		Start:           monday(10, 0),
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	slots, err := svc.OpenSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suppressed := map[string]bool{
		"09:00": true,
		"10:00": true, "10:15": true, "10:30": true, "10:45": true,
	}
	for _, sl := range slots {
		if sl.StartTime.Day() != 5 {
			continue
		}
		key := sl.StartTime.Format("15:04")
		if suppressed[key] {
			t.Errorf("slot %s should be suppressed", key)
		}
	}
}

func TestTypeSlots_Counseling(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)
	rules := svc.Rules()

	slots, err := svc.TypeSlots(context.Background(), 1, "counseling")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected counseling slots")
	}

	for _, sl := range slots {
		if sl.DurationMinutes != 60 {
			t.Errorf("duration = %d, want 60", sl.DurationMinutes)
		}
		tod := timeOfDay(sl.StartTime)
		if tod+time.Hour > rules.DayClose {
			t.Errorf("counseling slot %v runs past day close", sl.StartTime)
		}
		if rules.inLunch(tod, time.Hour) {
			t.Errorf("counseling slot %v overlaps lunch", sl.StartTime)
		}
	}

	// Last morning start is 11:00; 11:15 would run into lunch.
	var morning []string
	for _, sl := range slots {
		if sl.StartTime.Day() == 5 && timeOfDay(sl.StartTime) < rules.LunchStart {
			morning = append(morning, sl.StartTime.Format("15:04"))
		}
	}
	want := []string{"09:00", "09:15", "09:30", "09:45", "10:00", "10:15", "10:30", "10:45", "11:00"}
	if len(morning) != len(want) {
		t.Fatalf("morning starts = %v, want %v", morning, want)
	}
	for i := range want {
		if morning[i] != want[i] {
			t.Errorf("morning start %d = %s, want %s", i, morning[i], want[i])
		}
	}
}

func TestTypeSlots_UnknownType(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.TypeSlots(context.Background(), 7, "massage"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("got %v, want ErrUnknownType", err)
	}
}

func TestTypeSlots_ClampsDays(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	slots, err := svc.TypeSlots(context.Background(), 999, "general")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	limit := mondayMorning.AddDate(0, 0, 28)
	for _, sl := range slots {
		if !sl.StartTime.Before(limit) {
			t.Errorf("slot %v beyond the 28-day cap", sl.StartTime)
		}
	}
}

// -- Projections --

func TestListBlocked(t *testing.T) {
	svc, blocked, _ := newTestService(mondayMorning)

	// Already over before "now"; must not be listed.
	blocked.Create(context.Background(), &BlockedTime{
		SlotType:  "blocked",
		StartTime: monday(9, 0).AddDate(0, 0, -7),
		EndTime:   monday(9, 15).AddDate(0, 0, -7),
	})
	if _, err := svc.Block(context.Background(), "boss@admin.edu", monday(11, 0)); err != nil {
		t.Fatalf("block failed: %v", err)
	}
	if _, err := svc.Block(context.Background(), "boss@admin.edu", monday(10, 0)); err != nil {
		t.Fatalf("block failed: %v", err)
	}

	items, err := svc.ListBlocked(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 future blocked times, got %d", len(items))
	}
	if !items[0].StartTime.Equal(monday(10, 0)) || !items[1].StartTime.Equal(monday(11, 0)) {
		t.Errorf("blocked times not ascending: %v, %v", items[0].StartTime, items[1].StartTime)
	}
}

func TestListAppointments_Paginated(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	starts := []time.Time{monday(9, 0), monday(9, 15), monday(9, 30)}
	for i, start := range starts {
		if _, err := svc.Book(context.Background(), BookingRequest{
			StudentEmail:    "a@example.edu",
			AppointmentType: "general",
			Start:           start,
		}); err != nil {
			t.Fatalf("booking %d failed: %v", i, err)
		}
	}

	items, total, err := svc.ListAppointments(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 2 {
		t.Errorf("page size = %d, want 2", len(items))
	}
	if !items[0].StartTime.Equal(monday(9, 0)) {
		t.Errorf("first item = %v, want 09:00", items[0].StartTime)
	}
}

func TestListStudentAppointments(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	if _, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail: "a@example.edu", AppointmentType: "general", Start: monday(9, 0),
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := svc.Book(context.Background(), BookingRequest{
		StudentEmail: "b@example.edu", AppointmentType: "general", Start: monday(9, 15),
	}); err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	items, err := svc.ListStudentAppointments(context.Background(), "A@Example.edu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].StudentEmail != "a@example.edu" {
		t.Errorf("expected only a@example.edu's appointments, got %v", items)
	}

	if _, err := svc.ListStudentAppointments(context.Background(), ""); !errors.Is(err, ErrEmailRequired) {
		t.Errorf("blank email: got %v", err)
	}
	if _, err := svc.ListStudentAppointments(context.Background(), "boss@admin.edu"); !errors.Is(err, ErrListNotStudent) {
		t.Errorf("admin email: got %v", err)
	}
}

func TestCatalog(t *testing.T) {
	svc, _, _ := newTestService(mondayMorning)

	types := svc.Catalog()
	if len(types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(types))
	}
	want := []AppointmentType{
		{Type: "general", DurationMinutes: 15},
		{Type: "testing", DurationMinutes: 30},
		{Type: "counseling", DurationMinutes: 60},
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("catalog[%d] = %v, want %v", i, types[i], want[i])
		}
	}
}
