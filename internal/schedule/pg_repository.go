package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DB is the slice of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func pgTimeOfDay(t pgtype.Time) TimeOfDay {
	const microsPerMinute = 60_000_000
	return timeOfDayFromMinutes(int(t.Microseconds / microsPerMinute))
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&p.ClinicID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanRule(row pgx.Row) (*AvailabilityRule, error) {
	var (
		r          AvailabilityRule
		start, end pgtype.Time
	)
	err := row.Scan(
		&r.ID,
		&r.PractitionerID,
		&r.Weekday,
		&start,
		&end,
		&r.Active,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Window = NewInterval(pgTimeOfDay(start), pgTimeOfDay(end))
	return &r, nil
}

func scanShift(row pgx.Row) (*Shift, error) {
	var (
		s          Shift
		start, end pgtype.Time
	)
	err := row.Scan(
		&s.ID,
		&s.PractitionerID,
		&s.Date,
		&start,
		&end,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Window = NewInterval(pgTimeOfDay(start), pgTimeOfDay(end))
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a  Appointment
		at pgtype.Time
	)
	err := row.Scan(
		&a.ID,
		&a.PractitionerID,
		&a.PatientID,
		&a.Date,
		&at,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	a.Time = pgTimeOfDay(at)
	return &a, nil
}

// Interface methods

func (r *PgRepository) GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, specialty, clinic_id, created_at, updated_at
		FROM practitioners
		WHERE id = $1
	`, id)
	return scanPractitioner(row)
}

func (r *PgRepository) ListActiveRules(ctx context.Context, practitionerID uuid.UUID, weekday int) ([]AvailabilityRule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, practitioner_id, weekday, start_time, end_time, active, created_at
		FROM availability_rules
		WHERE practitioner_id = $1
		  AND weekday = $2
		  AND active = true
		ORDER BY start_time
	`, practitionerID, weekday)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}
	return result, rows.Err()
}

func (r *PgRepository) ListShifts(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Shift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, practitioner_id, shift_date, start_time, end_time, status, created_at, updated_at
		FROM shifts
		WHERE practitioner_id = $1
		  AND shift_date = $2
		ORDER BY start_time
	`, practitionerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *PgRepository) ListAppointments(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, practitioner_id, patient_id, appt_date, appt_time, status, created_at, updated_at
		FROM appointments
		WHERE practitioner_id = $1
		  AND appt_date = $2
		ORDER BY appt_time
	`, practitionerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) FindOverdueBooked(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, practitioner_id, patient_id, appt_date, appt_time, status, created_at, updated_at
		FROM appointments
		WHERE status IN ('requested', 'confirmed')
		  AND appt_date + appt_time < $1
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, practitioner_id, patient_id, appt_date, appt_time, status, created_at, updated_at
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
