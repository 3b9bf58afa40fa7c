package main

import (
	"github.com/hibiken/asynq"

	stockexceptionJob "warehouse-pick-coordinator/internal/domains/stockexception/job"
	syncJob "warehouse-pick-coordinator/internal/domains/sync/job"
	"warehouse-pick-coordinator/internal/shared"
	"warehouse-pick-coordinator/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	sync           *syncJob.SyncHandler
	notifyShortage *stockexceptionJob.NotifyShortageHandler
}

// initializeHandlers creates all job handlers with their dependencies.
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	return &HandlerRegistry{
		sync:           syncJob.NewSyncHandler(c.ImporterService),
		notifyShortage: stockexceptionJob.NewNotifyShortageHandler(c.StockExceptionService, c.SettingsRepo, c.EmailService, c.SMSService),
	}
}

// RegisterHandlers registers all handlers with the mux.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeSyncRun, h.sync.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyShortage, h.notifyShortage.ProcessTask)
}
