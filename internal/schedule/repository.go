package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
//
// The list methods return every row for the requested practitioner and
// date/weekday; which statuses actually block a slot is engine logic and is
// applied in the service, not in SQL.
type Repository interface {
	GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)

	// Slot computation reads
	ListActiveRules(ctx context.Context, practitionerID uuid.UUID, weekday int) ([]AvailabilityRule, error)
	ListShifts(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Shift, error)
	ListAppointments(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]Appointment, error)

	// No-show worker
	FindOverdueBooked(ctx context.Context, cutoff time.Time) ([]Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
