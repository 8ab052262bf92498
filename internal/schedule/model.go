package schedule

import (
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftInProgress ShiftStatus = "in_progress"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftCancelled  ShiftStatus = "cancelled"
)

// Blocks reports whether a shift in this status occupies the practitioner's
// calendar. Completed and cancelled shifts free their window again.
func (s ShiftStatus) Blocks() bool {
	return s == ShiftScheduled || s == ShiftInProgress
}

type AppointmentStatus string

const (
	ApptRequested  AppointmentStatus = "requested"
	ApptConfirmed  AppointmentStatus = "confirmed"
	ApptInProgress AppointmentStatus = "in_progress"
	ApptCompleted  AppointmentStatus = "completed"
	ApptCancelled  AppointmentStatus = "cancelled"
	ApptNoShow     AppointmentStatus = "no_show"
)

// Blocks reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) Blocks() bool {
	return s == ApptRequested || s == ApptConfirmed || s == ApptInProgress
}

type Practitioner struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	ClinicID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityRule is a recurring weekly window during which a practitioner
// accepts bookings. Weekday uses ISO numbering (1=Monday .. 7=Sunday).
// Rules for the same practitioner and weekday may overlap; the engine
// deduplicates the expanded slots.
type AvailabilityRule struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	Weekday        int
	Window         Interval
	Active         bool
	CreatedAt      time.Time
}

// Shift is an assigned work period (administrative duty, rounds, etc.) that
// occupies the practitioner's calendar regardless of bookings.
type Shift struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	Date           time.Time
	Window         Interval
	Status         ShiftStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Appointment occupies exactly one slot: its own clock time on its date.
type Appointment struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	Date           time.Time
	Time           TimeOfDay
	Status         AppointmentStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
