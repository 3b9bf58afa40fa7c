package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"warehouse-pick-coordinator/internal/shared"
	"warehouse-pick-coordinator/pkg/logger"
)

// Scheduler registers the periodic tasks a warehouse pick-coordinator
// worker owns: the scheduled upstream sync (its cadence configurable via
// APIConfig.sync_interval_minutes) and the recurring out-of-stock
// notification sweep.
type Scheduler struct {
	scheduler           *asynq.Scheduler
	syncIntervalMinutes int
}

func NewScheduler(redisAddress string, syncIntervalMinutes int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:           scheduler,
		syncIntervalMinutes: syncIntervalMinutes,
	}
}

// RegisterJobs wires every cron-triggered task this worker runs.
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerSyncJob(); err != nil {
		return err
	}
	if err := s.registerNotifyShortageJob(); err != nil {
		return err
	}
	return nil
}

// registerSyncJob drives C3's scheduled import at the interval the
// superadmin set in APIConfig; defaults to every 30 minutes if unset.
func (s *Scheduler) registerSyncJob() error {
	minutes := s.syncIntervalMinutes
	if minutes <= 0 {
		minutes = 30
	}

	task := asynq.NewTask(shared.TypeSyncRun, nil)

	_, err := s.scheduler.Register(
		fmt.Sprintf("*/%d * * * *", minutes),
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register sync job", err)
		return err
	}

	logger.Info("registered scheduled sync", map[string]interface{}{"every_minutes": minutes})
	return nil
}

// registerNotifyShortageJob sweeps unresolved shortages twice daily so
// purchasing sees a fresh reminder even if nobody triggers it manually.
func (s *Scheduler) registerNotifyShortageJob() error {
	task := asynq.NewTask(shared.TypeNotifyShortage, nil)

	_, err := s.scheduler.Register(
		"0 8,16 * * *",
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register notify-shortage job", err)
		return err
	}

	logger.Info("registered scheduled out-of-stock notification", map[string]interface{}{"cron": "0 8,16 * * *"})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
