package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cesfamnet/clinic-scheduling/internal/config"
	redisclient "github.com/cesfamnet/clinic-scheduling/internal/redis"
)

const (
	EventAppointmentNoShow = "APPOINTMENT_NO_SHOW"
)

type Service struct {
	repo  Repository
	cache redisclient.SlotCache
	cfg   config.Config
}

// NewService builds the availability engine. cache may be nil, in which case
// every query recomputes from the stores.
func NewService(repo Repository, cache redisclient.SlotCache, cfg config.Config) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

func (s *Service) slotStep() time.Duration {
	if s.cfg.SlotDuration > 0 {
		return s.cfg.SlotDuration
	}
	return DefaultSlotStep
}

// AvailableSlots computes the bookable slots for a practitioner on a date by
// reconciling three sources: recurring weekly availability rules (candidate
// slots), shifts in a blocking status (occupied windows) and appointments in
// a blocking status (occupied single slots). The result is ascending and
// duplicate-free; an empty result is a valid answer, not an error.
//
// The three fetches run concurrently and the first failure aborts the whole
// computation. A partial slot list is never returned.
func (s *Service) AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]TimeOfDay, error) {
	if _, err := s.repo.GetPractitionerByID(ctx, practitionerID); err != nil {
		if errors.Is(err, ErrPractitionerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load practitioner: %w", err)
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, practitionerID.String(), dateKey(date))
		if err != nil {
			log.Printf("slot cache read failed for %s/%s: %v", practitionerID, dateKey(date), err)
		} else if ok {
			slots, err := decodeSlots(cached)
			if err == nil {
				return slots, nil
			}
			// A corrupt entry falls through to a fresh computation.
			log.Printf("slot cache entry unusable for %s/%s: %v", practitionerID, dateKey(date), err)
		}
	}

	var (
		rules        []AvailabilityRule
		shifts       []Shift
		appointments []Appointment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = s.repo.ListActiveRules(gctx, practitionerID, isoWeekday(date))
		if err != nil {
			return fmt.Errorf("fetch availability rules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		shifts, err = s.repo.ListShifts(gctx, practitionerID, date)
		if err != nil {
			return fmt.Errorf("fetch shifts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		appointments, err = s.repo.ListAppointments(gctx, practitionerID, date)
		if err != nil {
			return fmt.Errorf("fetch appointments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// No recurring availability that weekday means nothing is offered,
	// regardless of shifts or appointments.
	if len(rules) == 0 {
		return []TimeOfDay{}, nil
	}

	step := s.slotStep()

	candidates := make(map[TimeOfDay]struct{})
	for _, rule := range rules {
		for slot := range rule.Window.Slots(step) {
			candidates[slot] = struct{}{}
		}
	}

	occupied := make(map[TimeOfDay]struct{})
	for _, shift := range shifts {
		if !shift.Status.Blocks() {
			continue
		}
		for slot := range shift.Window.Slots(step) {
			occupied[slot] = struct{}{}
		}
	}
	for _, appt := range appointments {
		if !appt.Status.Blocks() {
			continue
		}
		occupied[appt.Time] = struct{}{}
	}

	available := make([]TimeOfDay, 0, len(candidates))
	for slot := range candidates {
		if _, taken := occupied[slot]; !taken {
			available = append(available, slot)
		}
	}
	sort.Slice(available, func(i, j int) bool {
		return available[i].Before(available[j])
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, practitionerID.String(), dateKey(date), encodeSlots(available)); err != nil {
			log.Printf("slot cache write failed for %s/%s: %v", practitionerID, dateKey(date), err)
		}
	}

	return available, nil
}

// MarkOverdueNoShows flips booked appointments whose slot time passed more
// than the grace period ago to no-show. Intended to be called periodically
// by the worker. Returns how many appointments were transitioned.
func (s *Service) MarkOverdueNoShows(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.cfg.NoShowGrace)

	overdue, err := s.repo.FindOverdueBooked(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	marked := 0
	for _, appt := range overdue {
		_, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, ApptNoShow)
		if err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				log.Printf("failed to mark appointment %s as no-show: %v", appt.ID, err)
			}
			continue
		}
		marked++
		s.logEvent(ctx, appt.ID, EventAppointmentNoShow, map[string]any{
			"practitioner_id": appt.PractitionerID.String(),
			"scheduled_for":   fmt.Sprintf("%s %s", dateKey(appt.Date), appt.Time),
		})
	}

	return marked, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	apptID := appointmentID
	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Printf("failed to insert event log %s for appointment %s: %v", eventType, appointmentID, err)
	}
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func encodeSlots(slots []TimeOfDay) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func decodeSlots(raw []string) ([]TimeOfDay, error) {
	out := make([]TimeOfDay, len(raw))
	for i, s := range raw {
		t, err := ParseTimeOfDay(s)
		if err != nil {
			return nil, fmt.Errorf("corrupt cached slot list: %w", err)
		}
		out[i] = t
	}
	return out, nil
}
