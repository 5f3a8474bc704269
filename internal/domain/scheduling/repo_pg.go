package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthcenter/healthcenter/internal/platform/db"
)

// =========== BlockedTime Repository ===========

type blockedTimeRepoPG struct{ pool *pgxpool.Pool }

func NewBlockedTimeRepoPG(pool *pgxpool.Pool) BlockedTimeRepository {
	return &blockedTimeRepoPG{pool: pool}
}

func (r *blockedTimeRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const blockedCols = `id, slot_type, start_time, end_time, created_at`

func (r *blockedTimeRepoPG) scanBlocked(row pgx.Row) (*BlockedTime, error) {
	var b BlockedTime
	err := row.Scan(&b.ID, &b.SlotType, &b.StartTime, &b.EndTime, &b.CreatedAt)
	return &b, err
}

func (r *blockedTimeRepoPG) Create(ctx context.Context, b *BlockedTime) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blocked_time (id, slot_type, start_time, end_time)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		b.ID, b.SlotType, b.StartTime, b.EndTime).Scan(&b.CreatedAt)
}

func (r *blockedTimeRepoPG) DeleteByIDAndType(ctx context.Context, id uuid.UUID, slotType string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blocked_time WHERE id = $1 AND slot_type = $2`, id, slotType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *blockedTimeRepoPG) ListOverlapping(ctx context.Context, iv Interval) ([]*BlockedTime, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blockedCols+` FROM blocked_time
		WHERE start_time < $2 AND end_time > $1
		ORDER BY start_time ASC`, iv.Start, iv.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BlockedTime
	for rows.Next() {
		b, err := r.scanBlocked(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *blockedTimeRepoPG) ListFrom(ctx context.Context, from time.Time) ([]*BlockedTime, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+blockedCols+` FROM blocked_time
		WHERE end_time > $1
		ORDER BY start_time ASC`, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*BlockedTime
	for rows.Next() {
		b, err := r.scanBlocked(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) db.Querier {
	return db.QuerierFromContext(ctx, r.pool)
}

const apptCols = `id, student_email, appointment_type, status, start_time, end_time, notes, created_at, updated_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.StudentEmail, &a.AppointmentType, &a.Status,
		&a.StartTime, &a.EndTime, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err == nil {
		a.fillDuration()
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, student_email, appointment_type, status, start_time, end_time, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		a.ID, a.StudentEmail, a.AppointmentType, a.Status, a.StartTime, a.EndTime, a.Notes).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err == nil {
		a.fillDuration()
	}
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppt(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	return err
}

func (r *appointmentRepoPG) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE appointment SET notes = $2, updated_at = NOW() WHERE id = $1`, id, notes)
	return err
}

func (r *appointmentRepoPG) ListOverlapping(ctx context.Context, iv Interval) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE start_time < $2 AND end_time > $1
		ORDER BY start_time ASC`, iv.Start, iv.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *appointmentRepoPG) ListFrom(ctx context.Context, from time.Time, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE end_time > $1`, from).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE end_time > $1
		ORDER BY start_time ASC LIMIT $2 OFFSET $3`, from, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByStudent(ctx context.Context, studentEmail string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE student_email = $1
		ORDER BY start_time ASC`, studentEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
