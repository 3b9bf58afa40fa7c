package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/order"
	"warehouse-pick-coordinator/internal/domains/product"
	"warehouse-pick-coordinator/internal/shared/apperr"
	db "warehouse-pick-coordinator/pkg/database"
)

type orderService struct {
	pool        *pgxpool.Pool
	repo        order.Repository
	productRepo product.Repository
}

func NewOrderService(pool *pgxpool.Pool, repo order.Repository, productRepo product.Repository) order.Service {
	return &orderService{pool: pool, repo: repo, productRepo: productRepo}
}

func (s *orderService) Get(ctx context.Context, id int64) (*order.OrderDetail, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	lines, err := s.repo.LinesByOrder(ctx, id)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load order lines: %w", err))
	}
	return &order.OrderDetail{Order: *o, Lines: lines}, nil
}

func (s *orderService) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal(fmt.Errorf("list orders: %w", err))
	}
	return orders, total, nil
}

// MarkPacked implements spec §4.5's MarkPacked: advance the shipment batch
// and re-derive if more batches remain, else pack the order outright.
// Fails InvalidTransition if the current shipment is not ready.
func (s *orderService) MarkPacked(ctx context.Context, orderID int64, actorID int64) error {
	return withOrderTx(ctx, s.pool, s.repo, func(repo order.Repository) error {
		o, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return mapErr(err)
		}
		if o.Status == order.StatusPacked {
			return apperr.InvalidTransition(order.ErrAlreadyPacked.Error())
		}
		if !o.ReadyToPack {
			return apperr.InvalidTransition(order.ErrNotReadyToPack.Error())
		}

		if o.CurrentShipment < o.TotalShipments {
			if err := repo.AdvanceShipment(ctx, orderID); err != nil {
				return apperr.Internal(fmt.Errorf("advance shipment: %w", err))
			}
			return rederive(ctx, repo, orderID, o.CurrentShipment+1)
		}

		if err := repo.MarkPackedRow(ctx, orderID, actorID); err != nil {
			return apperr.Internal(fmt.Errorf("mark packed: %w", err))
		}
		return nil
	})
}

func (s *orderService) RevertToPicking(ctx context.Context, orderID int64) error {
	return withOrderTx(ctx, s.pool, s.repo, func(repo order.Repository) error {
		if _, err := repo.FindByID(ctx, orderID); err != nil {
			return mapErr(err)
		}
		if err := repo.RevertToPicking(ctx, orderID); err != nil {
			return apperr.Internal(fmt.Errorf("revert to picking: %w", err))
		}
		return nil
	})
}

func (s *orderService) ChangeState(ctx context.Context, orderID int64, status order.Status) error {
	return withOrderTx(ctx, s.pool, s.repo, func(repo order.Repository) error {
		o, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return mapErr(err)
		}
		if o.Status != order.StatusPacked {
			return apperr.InvalidTransition("change-state is only valid from packed")
		}
		resetShipment := status == order.StatusOpen || status == order.StatusPicking
		if err := repo.ChangeState(ctx, orderID, status, resetShipment); err != nil {
			return apperr.Internal(fmt.Errorf("change state: %w", err))
		}
		return nil
	})
}

func (s *orderService) UpdateMessage(ctx context.Context, orderID int64, message string) error {
	if err := s.repo.UpdateCustomerMessage(ctx, orderID, message); err != nil {
		if err == order.ErrNotFound {
			return apperr.NotFound(err.Error())
		}
		return apperr.Internal(fmt.Errorf("update customer message: %w", err))
	}
	return nil
}

// Split validates batch ∈ 1..5, contiguous-prefix batch usage, and every
// line belonging to the current shipment, per spec §4.5.
func (s *orderService) Split(ctx context.Context, orderID int64, assignments []order.LineBatchAssignment) error {
	return withOrderTx(ctx, s.pool, s.repo, func(repo order.Repository) error {
		o, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return mapErr(err)
		}
		if o.Status == order.StatusPacked {
			return apperr.InvalidTransition("cannot split a packed order")
		}
		lines, err := repo.LinesByOrder(ctx, orderID)
		if err != nil {
			return apperr.Internal(fmt.Errorf("load lines: %w", err))
		}
		lineByID := make(map[int64]order.Line, len(lines))
		for _, l := range lines {
			lineByID[l.ID] = l
		}

		batchByLine := make(map[int64]int, len(assignments))
		maxBatch := 0
		for _, a := range assignments {
			if a.Batch < 1 || a.Batch > 5 {
				return apperr.Validation(order.ErrInvalidBatch.Error())
			}
			l, ok := lineByID[a.LineID]
			if !ok {
				return apperr.NotFound(order.ErrLineNotFound.Error())
			}
			if l.ShipmentBatch != o.CurrentShipment {
				return apperr.Validation(order.ErrNotCurrentShipment.Error())
			}
			batchByLine[a.LineID] = a.Batch
			if a.Batch > maxBatch {
				maxBatch = a.Batch
			}
		}

		used := make(map[int]int)
		for _, b := range batchByLine {
			used[b]++
		}
		for b := 1; b <= maxBatch; b++ {
			if used[b] == 0 {
				return apperr.Validation(order.ErrBatchNotContiguous.Error())
			}
		}

		if err := repo.SetLineShipmentBatches(ctx, orderID, batchByLine, maxBatch); err != nil {
			return apperr.Internal(fmt.Errorf("set shipment batches: %w", err))
		}
		return rederive(ctx, repo, orderID, 1)
	})
}

func (s *orderService) Unsplit(ctx context.Context, orderID int64) error {
	return withOrderTx(ctx, s.pool, s.repo, func(repo order.Repository) error {
		if _, err := repo.FindByID(ctx, orderID); err != nil {
			return mapErr(err)
		}
		if err := repo.ResetShipmentBatches(ctx, orderID); err != nil {
			return apperr.Internal(fmt.Errorf("unsplit: %w", err))
		}
		return rederive(ctx, repo, orderID, 1)
	})
}

// rederive re-reads the lines for the given shipment and writes Derive's
// output back through the repository — the one place every mutation path
// (pick, import, split) funnels through to keep status/ready_to_pack
// consistent.
func rederive(ctx context.Context, repo order.Repository, orderID int64, shipment int) error {
	lines, err := repo.LinesByOrder(ctx, orderID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load lines for derivation: %w", err))
	}
	status, readyToPack := order.Derive(shipment, order.LinesInShipment(lines, shipment))
	if err := repo.ApplyDerivation(ctx, orderID, status, readyToPack); err != nil {
		return apperr.Internal(fmt.Errorf("apply derivation: %w", err))
	}
	return nil
}

func mapErr(err error) error {
	switch err {
	case order.ErrNotFound:
		return apperr.NotFound(err.Error())
	case order.ErrLineNotFound:
		return apperr.NotFound(err.Error())
	default:
		return apperr.Internal(err)
	}
}

// withOrderTx runs fn with a repository bound to a fresh transaction.
func withOrderTx(ctx context.Context, pool *pgxpool.Pool, repo order.Repository, fn func(order.Repository) error) error {
	_, err := db.WithTransactionResult(ctx, pool, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(repo.WithTx(tx))
	})
	return err
}
