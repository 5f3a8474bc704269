package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BlockedTimeRepository interface {
	Create(ctx context.Context, b *BlockedTime) error
	// DeleteByIDAndType deletes the blocked time matching both the id and the
	// sentinel type tag, reporting whether a row was removed. Appointments are
	// never reachable through this path.
	DeleteByIDAndType(ctx context.Context, id uuid.UUID, slotType string) (bool, error)
	ListOverlapping(ctx context.Context, iv Interval) ([]*BlockedTime, error)
	ListFrom(ctx context.Context, from time.Time) ([]*BlockedTime, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetByID returns (nil, nil) when no appointment matches.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error
	ListOverlapping(ctx context.Context, iv Interval) ([]*Appointment, error)
	ListFrom(ctx context.Context, from time.Time, limit, offset int) ([]*Appointment, int, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]*Appointment, error)
}
