package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cesfamnet/clinic-scheduling/internal/schedule"
)

// SlotService is the part of the availability engine the HTTP layer needs.
type SlotService interface {
	AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date time.Time) ([]schedule.TimeOfDay, error)
}

// availableSlotsHandler serves
// GET /practitioners/{id}/available-slots?date=YYYY-MM-DD
// with a JSON array of "HH:MM" strings, ascending and deduplicated. An empty
// array is a meaningful answer (the practitioner offers nothing that day)
// and is not an error. All input validation happens here, before any store
// is touched.
func availableSlotsHandler(svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		practitionerID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_practitioner_id", "id must be a valid UUID")
			return
		}

		dateStr := r.URL.Query().Get("date")
		if dateStr == "" {
			writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
			return
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be a valid YYYY-MM-DD calendar date")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), practitionerID, date)
		if err != nil {
			handleSlotsError(w, err)
			return
		}

		out := make([]string, 0, len(slots))
		for _, s := range slots {
			out = append(out, s.String())
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func handleSlotsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrPractitionerNotFound):
		writeError(w, http.StatusNotFound, "practitioner_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
