package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cesfamnet/clinic-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	practitioners, err := seedPractitioners(context.Background(), pool, 60)
	if err != nil {
		log.Fatalf("seed practitioners: %v", err)
	}
	patients, err := seedPatients(context.Background(), pool, 800)
	if err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedAvailabilityRules(context.Background(), pool, practitioners); err != nil {
		log.Fatalf("seed availability rules: %v", err)
	}
	if err := seedShifts(context.Background(), pool, practitioners); err != nil {
		log.Fatalf("seed shifts: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, practitioners, patients); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

var specialties = []string{
	"General Practice",
	"Pediatrics",
	"Gynecology",
	"Cardiology",
	"Dermatology",
	"Traumatology",
	"Ophthalmology",
	"Psychiatry",
	"Nutrition",
}

func seedPractitioners(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d practitioners", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO practitioners (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("practitioners seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("patients seeded")
	return ids, nil
}

// Windows practitioners commonly work; the last one rolls over midnight so
// the evening-shift path stays exercised in dev.
var ruleWindows = [][2]string{
	{"08:00", "12:00"},
	{"09:00", "13:00"},
	{"14:00", "18:00"},
	{"15:00", "19:00"},
	{"22:00", "02:00"},
}

func seedAvailabilityRules(ctx context.Context, pool *pgxpool.Pool, practitioners []uuid.UUID) error {
	log.Println("seeding availability rules")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, pid := range practitioners {
		days := gofakeit.Number(2, 5)
		for d := 0; d < days; d++ {
			weekday := gofakeit.Number(1, 7)
			windows := gofakeit.Number(1, 2)
			for w := 0; w < windows; w++ {
				win := ruleWindows[gofakeit.Number(0, len(ruleWindows)-1)]
				active := gofakeit.Number(0, 9) > 0 // an occasional deactivated rule

				_, err := tx.Exec(ctx, `
					INSERT INTO availability_rules (id, practitioner_id, weekday, start_time, end_time, active, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, now())
					ON CONFLICT DO NOTHING
				`, uuid.New(), pid, weekday, win[0], win[1], active)
				if err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("availability rules seeded")
	return nil
}

func seedShifts(ctx context.Context, pool *pgxpool.Pool, practitioners []uuid.UUID) error {
	log.Println("seeding shifts")

	statuses := []string{"scheduled", "scheduled", "scheduled", "in_progress", "completed", "cancelled"}
	windows := [][2]string{
		{"08:00", "09:00"},
		{"12:00", "14:00"},
		{"13:00", "13:30"},
		{"17:00", "18:00"},
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now().Truncate(24 * time.Hour)
	for _, pid := range practitioners {
		n := gofakeit.Number(0, 6)
		for i := 0; i < n; i++ {
			date := today.AddDate(0, 0, gofakeit.Number(0, 13))
			win := windows[gofakeit.Number(0, len(windows)-1)]
			status := statuses[gofakeit.Number(0, len(statuses)-1)]

			_, err := tx.Exec(ctx, `
				INSERT INTO shifts (id, practitioner_id, shift_date, start_time, end_time, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			`, uuid.New(), pid, date, win[0], win[1], status)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("shifts seeded")
	return nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, practitioners, patients []uuid.UUID) error {
	log.Println("seeding appointments")

	statuses := []string{"requested", "confirmed", "confirmed", "in_progress", "completed", "cancelled", "no_show"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now().Truncate(24 * time.Hour)
	for _, pid := range practitioners {
		n := gofakeit.Number(0, 12)
		for i := 0; i < n; i++ {
			date := today.AddDate(0, 0, gofakeit.Number(-3, 10))
			hour := gofakeit.Number(8, 18)
			minute := 30 * gofakeit.Number(0, 1)
			patient := patients[gofakeit.Number(0, len(patients)-1)]
			status := statuses[gofakeit.Number(0, len(statuses)-1)]

			// One appointment per practitioner slot; collisions just skip.
			_, err := tx.Exec(ctx, `
				INSERT INTO appointments (id, practitioner_id, patient_id, appt_date, appt_time, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, make_time($5, $6, 0), $7, now(), now())
				ON CONFLICT DO NOTHING
			`, uuid.New(), pid, patient, date, hour, minute, status)
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}
