package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// BlockedTime maps to the blocked_time table: admin-reserved unavailable
// time, one grid unit long, independent of any appointment.
type BlockedTime struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SlotType  string    `db:"slot_type" json:"slot_type"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Interval returns the blocked half-open range.
func (b *BlockedTime) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Appointment maps to the appointment table: a booked interval tied to a
// student. Hard-deleted on cancellation; the freed interval reopens
// immediately because availability is derived, not stored.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	StudentEmail    string    `db:"student_email" json:"student_email"`
	AppointmentType string    `db:"appointment_type" json:"appointment_type"`
	Status          string    `db:"status" json:"status"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	DurationMinutes int       `db:"-" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Interval returns the booked half-open range.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) fillDuration() {
	a.DurationMinutes = int(a.EndTime.Sub(a.StartTime) / time.Minute)
}

// Slot is a derived bookable start. Never persisted; recomputed from the
// stored intervals on every availability query.
type Slot struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	AppointmentType string    `json:"appointment_type,omitempty"`
}

// AppointmentType is one catalog entry: a type tag and its fixed duration.
type AppointmentType struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
}
