package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cesfamnet/clinic-scheduling/internal/db"
)

// simulate hammers the available-slots endpoint with concurrent readers and
// reports latency percentiles, so cache TTL and pool sizing can be tuned
// against realistic booking-page traffic.

type SimConfig struct {
	APIBaseURL        string
	Duration          time.Duration
	Workers           int
	DateSpreadDays    int
	PractitionerLimit int
	PostgresDSN       string
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:        getEnv("SIM_API_URL", "http://127.0.0.1:8080"),
		Duration:          getDurationEnv("SIM_DURATION", 30*time.Second),
		Workers:           getIntEnv("SIM_WORKERS", 20),
		DateSpreadDays:    getIntEnv("SIM_DATE_SPREAD", 7),
		PractitionerLimit: getIntEnv("SIM_PRACTITIONER_LIMIT", 200),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required to load practitioner IDs")
	}
	return cfg
}

type Metrics struct {
	Total     int64
	OK        int64
	NotFound  int64
	BadInput  int64
	Errors    int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *Metrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&m.Total, 1)
	switch {
	case err != nil:
		atomic.AddInt64(&m.Errors, 1)
	case status == http.StatusOK:
		atomic.AddInt64(&m.OK, 1)
	case status == http.StatusNotFound:
		atomic.AddInt64(&m.NotFound, 1)
	case status == http.StatusBadRequest:
		atomic.AddInt64(&m.BadInput, 1)
	default:
		atomic.AddInt64(&m.Errors, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *Metrics) Percentiles() (p50, p95, p99 time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0, 0, 0
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := func(pct int) int {
		i := len(sorted) * pct / 100
		if i >= len(sorted) {
			i = len(sorted) - 1
		}
		return i
	}
	return sorted[idx(50)], sorted[idx(95)], sorted[idx(99)]
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cfg := loadSimConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}

	practitioners, err := loadPractitionerIDs(context.Background(), pool, cfg.PractitionerLimit)
	pool.Close()
	if err != nil {
		log.Fatalf("load practitioner ids: %v", err)
	}
	if len(practitioners) == 0 {
		log.Fatal("no practitioners in database, run cmd/seed first")
	}
	log.Printf("loaded %d practitioner ids", len(practitioners))

	metrics := &Metrics{}
	client := &http.Client{Timeout: 5 * time.Second}

	runCtx, stopRun := context.WithTimeout(context.Background(), cfg.Duration)
	defer stopRun()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for runCtx.Err() == nil {
				queryOnce(runCtx, client, cfg, rng, practitioners, metrics)
			}
		}(time.Now().UnixNano() + int64(w))
	}
	wg.Wait()

	p50, p95, p99 := metrics.Percentiles()
	fmt.Printf("requests=%d ok=%d not_found=%d bad_input=%d errors=%d\n",
		metrics.Total, metrics.OK, metrics.NotFound, metrics.BadInput, metrics.Errors)
	fmt.Printf("latency p50=%s p95=%s p99=%s\n", p50, p95, p99)
}

func queryOnce(ctx context.Context, client *http.Client, cfg SimConfig, rng *rand.Rand, practitioners []uuid.UUID, metrics *Metrics) {
	pid := practitioners[rng.Intn(len(practitioners))]
	date := time.Now().AddDate(0, 0, rng.Intn(cfg.DateSpreadDays)).Format("2006-01-02")
	url := fmt.Sprintf("%s/practitioners/%s/available-slots?date=%s", cfg.APIBaseURL, pid, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		metrics.Record(0, 0, err)
		return
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if ctx.Err() == nil {
			metrics.Record(latency, 0, err)
		}
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	metrics.Record(latency, resp.StatusCode, nil)
}

func loadPractitionerIDs(ctx context.Context, pool *pgxpool.Pool, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, `SELECT id FROM practitioners LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
