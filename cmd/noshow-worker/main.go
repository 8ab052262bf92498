package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/cesfamnet/clinic-scheduling/internal/config"
	"github.com/cesfamnet/clinic-scheduling/internal/db"
	"github.com/cesfamnet/clinic-scheduling/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("noshow-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running no-show worker in env=%s interval=%s grace=%s", cfg.Env, cfg.WorkerInterval, cfg.NoShowGrace)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	repo := schedule.NewPgRepository(pgPool)
	svc := schedule.NewService(repo, nil, cfg)

	// Run once at startup, then on every tick
	runOnce(rootCtx, svc)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutting down noshow-worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *schedule.Service) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	marked, err := svc.MarkOverdueNoShows(sweepCtx, time.Now())
	if err != nil {
		log.Printf("no-show sweep failed: %v", err)
		return
	}
	if marked > 0 {
		log.Printf("marked %d appointments as no-show", marked)
	}
}
