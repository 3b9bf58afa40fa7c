package main

import (
	"context"
	"log"

	"warehouse-pick-coordinator/internal/domains/settings"
	"warehouse-pick-coordinator/internal/infrastructure/queue"
)

// asynqScheduler wraps queue.Scheduler with additional functionality.
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler creates and configures the scheduler, reading the sync
// interval from the APIConfig singleton so an admin's setting takes
// effect the next time the worker restarts.
func setupScheduler(cfg *Config, settingsRepo settings.Repository) *asynqScheduler {
	syncIntervalMinutes := 30
	if apiCfg, err := settingsRepo.GetAPIConfig(context.Background()); err == nil && apiCfg.SyncIntervalMinutes > 0 {
		syncIntervalMinutes = apiCfg.SyncIntervalMinutes
	}

	scheduler := queue.NewScheduler(cfg.RedisAddr, syncIntervalMinutes)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	go func() {
		log.Println("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] Failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler.
func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] stopped")
}
