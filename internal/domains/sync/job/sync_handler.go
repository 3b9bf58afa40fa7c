// Package job adapts the C3 importer to an asynq periodic task, the
// scheduled counterpart to SyncHandler.TriggerSync's manual path.
package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"warehouse-pick-coordinator/internal/domains/sync/importer"
)

type SyncHandler struct {
	importer importer.Service
}

func NewSyncHandler(importer importer.Service) *SyncHandler {
	return &SyncHandler{importer: importer}
}

func (h *SyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	result, err := h.importer.Sync(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled sync failed")
		return err
	}
	log.Info().
		Int64("sync_log_id", result.SyncLogID).
		Int("orders_fetched", result.Counters.OrdersFetched).
		Int("orders_created", result.Counters.OrdersCreated).
		Int("products_updated", result.Counters.ProductsUpdated).
		Msg("scheduled sync completed")
	return nil
}
