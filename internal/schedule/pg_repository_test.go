package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
)

func pgTime(hour, minute int) pgtype.Time {
	return pgtype.Time{
		Microseconds: int64(hour*3600+minute*60) * 1_000_000,
		Valid:        true,
	}
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PgRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPgRepository(mock)
}

func TestPgRepository_GetPractitionerByID(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	now := time.Now()
	specialty := "Pediatrics"

	mock.ExpectQuery(`FROM practitioners`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "specialty", "clinic_id", "created_at", "updated_at"}).
			AddRow(id, "Dr. Rojas", &specialty, (*uuid.UUID)(nil), now, now))

	p, err := repo.GetPractitionerByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPractitionerByID: %v", err)
	}
	if p.ID != id || p.Name != "Dr. Rojas" {
		t.Errorf("unexpected practitioner: %+v", p)
	}
	if p.Specialty == nil || *p.Specialty != "Pediatrics" {
		t.Errorf("unexpected specialty: %v", p.Specialty)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPgRepository_GetPractitionerByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`FROM practitioners`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPractitionerByID(context.Background(), id)
	if err != ErrPractitionerNotFound {
		t.Fatalf("expected ErrPractitionerNotFound, got %v", err)
	}
}

func TestPgRepository_ListActiveRules(t *testing.T) {
	mock, repo := newMockRepo(t)

	pid := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM availability_rules`).
		WithArgs(pid, 3).
		WillReturnRows(pgxmock.NewRows([]string{"id", "practitioner_id", "weekday", "start_time", "end_time", "active", "created_at"}).
			AddRow(uuid.New(), pid, 3, pgTime(9, 0), pgTime(13, 0), true, now).
			AddRow(uuid.New(), pid, 3, pgTime(22, 0), pgTime(2, 0), true, now))

	rules, err := repo.ListActiveRules(context.Background(), pid, 3)
	if err != nil {
		t.Fatalf("ListActiveRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	if rules[0].Window.Start.String() != "09:00" || rules[0].Window.End.String() != "13:00" {
		t.Errorf("unexpected first window: %+v", rules[0].Window)
	}
	if rules[0].Window.SpansMidnight {
		t.Error("09:00-13:00 flagged as spanning midnight")
	}
	if !rules[1].Window.SpansMidnight {
		t.Error("22:00-02:00 not flagged as spanning midnight")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPgRepository_ListAppointments(t *testing.T) {
	mock, repo := newMockRepo(t)

	pid := uuid.New()
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	mock.ExpectQuery(`FROM appointments`).
		WithArgs(pid, date).
		WillReturnRows(pgxmock.NewRows([]string{"id", "practitioner_id", "patient_id", "appt_date", "appt_time", "status", "created_at", "updated_at"}).
			AddRow(uuid.New(), pid, uuid.New(), date, pgTime(10, 30), AppointmentStatus("confirmed"), now, now))

	appts, err := repo.ListAppointments(context.Background(), pid, date)
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(appts))
	}
	if appts[0].Time.String() != "10:30" {
		t.Errorf("appointment time = %s, want 10:30", appts[0].Time)
	}
	if appts[0].Status != ApptConfirmed {
		t.Errorf("appointment status = %s, want confirmed", appts[0].Status)
	}
}

func TestPgRepository_UpdateAppointmentStatus_Gone(t *testing.T) {
	mock, repo := newMockRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`UPDATE appointments`).
		WithArgs(id, ApptNoShow, ApptConfirmed).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateAppointmentStatus(context.Background(), id, ApptConfirmed, ApptNoShow)
	if err != ErrAppointmentNotFound {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestPgRepository_InsertEvent(t *testing.T) {
	mock, repo := newMockRepo(t)

	apptID := uuid.New()
	ev := EventLog{
		EventType:     EventAppointmentNoShow,
		AppointmentID: &apptID,
		Payload:       []byte(`{"reason":"worker"}`),
	}

	mock.ExpectExec(`INSERT INTO event_logs`).
		WithArgs(ev.EventType, ev.AppointmentID, ev.Payload, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.InsertEvent(context.Background(), ev); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
