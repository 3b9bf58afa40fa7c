package service

import (
	"fmt"

	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/order"
	"warehouse-pick-coordinator/internal/domains/pick"
	"warehouse-pick-coordinator/internal/domains/product"
	"warehouse-pick-coordinator/internal/domains/stockexception"
	"warehouse-pick-coordinator/internal/shared/apperr"
	db "warehouse-pick-coordinator/pkg/database"
)

type pickService struct {
	pool        *pgxpool.Pool
	repo        pick.Repository
	orderRepo   order.Repository
	productRepo product.Repository
	exceptions  stockexception.Repository
}

func NewPickService(
	pool *pgxpool.Pool,
	repo pick.Repository,
	orderRepo order.Repository,
	productRepo product.Repository,
	exceptions stockexception.Repository,
) pick.Service {
	return &pickService{pool: pool, repo: repo, orderRepo: orderRepo, productRepo: productRepo, exceptions: exceptions}
}

func (s *pickService) PickList(ctx context.Context) ([]pick.Row, error) {
	rows, err := s.repo.Aggregate(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("pick list: %w", err))
	}
	return rows, nil
}

func (s *pickService) PreviewOrdersForSKU(ctx context.Context, sku string) ([]pick.LineForPick, error) {
	lines, err := s.repo.PreviewLinesForSKU(ctx, sku)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("preview orders for sku: %w", err))
	}
	return lines, nil
}

func (s *pickService) PickedItems(ctx context.Context) ([]pick.Event, error) {
	events, err := s.repo.ListPickEvents(ctx, 200)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("picked items: %w", err))
	}
	return events, nil
}

// Pick implements spec §4.3's FIFO allocation: lock every order line
// demanding sku in (order.created_at, order.id) order, then walk the list
// front to back handing out qty against each line's remaining demand until
// either the requested quantity or the demand is exhausted. Every touched
// order is re-derived before commit.
func (s *pickService) Pick(ctx context.Context, sku string, qty int, userID int64, notes *string) (*pick.PickResult, error) {
	if qty <= 0 {
		return nil, apperr.Validation("pick quantity must be positive")
	}
	if _, err := s.productRepo.FindBySKU(ctx, sku); err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("unknown sku %q", sku))
	}

	result, err := db.WithSerializableTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*pick.PickResult, error) {
		lines, err := s.repo.LockLinesForSKU(ctx, tx, sku)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("lock lines for sku: %w", err))
		}

		totalRemaining := 0
		for _, l := range lines {
			totalRemaining += l.Remaining()
		}
		if qty > totalRemaining {
			return nil, apperr.InsufficientRemaining(fmt.Sprintf(
				"requested %d exceeds remaining demand %d for sku %q", qty, totalRemaining, sku))
		}

		res := &pick.PickResult{SKU: sku}
		remaining := qty
		touchedOrders := map[int64]int{}
		touchedOrderNumber := map[int64]string{}

		for _, l := range lines {
			if remaining <= 0 {
				break
			}
			take := l.Remaining()
			if take > remaining {
				take = remaining
			}
			if take <= 0 {
				continue
			}
			if err := s.repo.IncrementPicked(ctx, tx, l.LineID, take); err != nil {
				return nil, apperr.Internal(fmt.Errorf("increment picked: %w", err))
			}
			if _, err := s.repo.InsertEvent(ctx, tx, pick.Event{
				OrderLineID: l.LineID, UserID: userID, DeltaQty: take, Kind: pick.KindPick, Notes: notes,
			}); err != nil {
				return nil, apperr.Internal(fmt.Errorf("insert pick event: %w", err))
			}
			remaining -= take
			touchedOrders[l.OrderID] += take
			touchedOrderNumber[l.OrderID] = l.OrderNumber
			res.Orders = append(res.Orders, pick.OrderTaken{OrderID: l.OrderID, OrderNumber: l.OrderNumber, QtyTaken: take})
		}

		txOrderRepo := s.orderRepo.WithTx(tx)
		for orderID := range touchedOrders {
			if err := rederiveOrder(ctx, txOrderRepo, orderID); err != nil {
				return nil, err
			}
		}

		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkShort implements spec §4.3's not-in-stock path: each allocation
// records a short against one order's line (never exceeding its remaining
// demand), then a single StockException snapshot is recorded for the SKU
// across the affected orders.
func (s *pickService) MarkShort(ctx context.Context, sku string, allocations []pick.Allocation, userID int64, notes *string) (*pick.ShortResult, error) {
	if len(allocations) == 0 {
		return nil, apperr.Validation(pick.ErrEmptyAllocations.Error())
	}
	p, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, apperr.NotFound(fmt.Sprintf("unknown sku %q", sku))
	}

	result, err := db.WithSerializableTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*pick.ShortResult, error) {
		lines, err := s.repo.LockLinesForSKU(ctx, tx, sku)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("lock lines for sku: %w", err))
		}
		lineByOrder := make(map[int64]pick.LineForPick, len(lines))
		for _, l := range lines {
			lineByOrder[l.OrderID] = l
		}

		res := &pick.ShortResult{SKU: sku}
		var orderNumbers []string
		totalShort := 0
		txOrderRepo := s.orderRepo.WithTx(tx)
		touched := map[int64]bool{}

		for _, a := range allocations {
			l, ok := lineByOrder[a.OrderID]
			if !ok {
				return nil, apperr.NotFound(fmt.Sprintf("order %d has no open demand for sku %q", a.OrderID, sku))
			}
			if a.QtyShort <= 0 || a.QtyShort > l.Remaining() {
				return nil, apperr.InsufficientRemaining(pick.ErrAllocationExceeds.Error())
			}
			if err := s.repo.IncrementShort(ctx, tx, l.LineID, a.QtyShort); err != nil {
				return nil, apperr.Internal(fmt.Errorf("increment short: %w", err))
			}
			if _, err := s.repo.InsertEvent(ctx, tx, pick.Event{
				OrderLineID: l.LineID, UserID: userID, DeltaQty: a.QtyShort, Kind: pick.KindShort, Notes: notes,
			}); err != nil {
				return nil, apperr.Internal(fmt.Errorf("insert short event: %w", err))
			}
			res.Orders = append(res.Orders, pick.OrderTaken{OrderID: a.OrderID, OrderNumber: l.OrderNumber, QtyTaken: a.QtyShort})
			orderNumbers = append(orderNumbers, l.OrderNumber)
			totalShort += a.QtyShort
			touched[a.OrderID] = true
		}

		for orderID := range touched {
			if err := rederiveOrder(ctx, txOrderRepo, orderID); err != nil {
				return nil, err
			}
		}

		se, err := s.exceptions.WithTx(tx).Create(ctx, stockexception.CreateFields{
			SKU:          sku,
			ProductTitle: p.Title,
			Category:     p.Category,
			QtyShort:     totalShort,
			OrderNumbers: orderNumbers,
			ReportedBy:   userID,
		})
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("record stock exception: %w", err))
		}
		res.ExceptionID = se.ID
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RevertPickedItem undoes a prior pick against one line, defaulting to the
// line's full picked quantity when qty is nil. Reverting always regresses
// the owning order through derivation since the line can no longer be done.
func (s *pickService) RevertPickedItem(ctx context.Context, lineID int64, qty *int, userID int64) (*pick.RevertResult, error) {
	result, err := db.WithSerializableTransactionResult(ctx, s.pool, func(tx pgx.Tx) (*pick.RevertResult, error) {
		l, err := s.repo.LineByID(ctx, tx, lineID)
		if err != nil {
			if err == pick.ErrLineNotFound {
				return nil, apperr.NotFound(err.Error())
			}
			return nil, apperr.Internal(fmt.Errorf("load line: %w", err))
		}

		revert := l.QtyPicked
		if qty != nil {
			revert = *qty
		}
		if revert <= 0 || revert > l.QtyPicked {
			return nil, apperr.InsufficientRemaining(pick.ErrRevertExceeds.Error())
		}

		if err := s.repo.DecrementPicked(ctx, tx, lineID, revert); err != nil {
			return nil, apperr.Internal(fmt.Errorf("decrement picked: %w", err))
		}
		if _, err := s.repo.InsertEvent(ctx, tx, pick.Event{
			OrderLineID: lineID, UserID: userID, DeltaQty: -revert, Kind: pick.KindRevert,
		}); err != nil {
			return nil, apperr.Internal(fmt.Errorf("insert revert event: %w", err))
		}

		if err := rederiveOrder(ctx, s.orderRepo.WithTx(tx), l.OrderID); err != nil {
			return nil, err
		}

		return &pick.RevertResult{OrderLineID: lineID, QtyReverted: revert}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func rederiveOrder(ctx context.Context, repo order.Repository, orderID int64) error {
	o, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load order for derivation: %w", err))
	}
	lines, err := repo.LinesByOrder(ctx, orderID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("load lines for derivation: %w", err))
	}
	status, readyToPack := order.Derive(o.CurrentShipment, order.LinesInShipment(lines, o.CurrentShipment))
	if err := repo.ApplyDerivation(ctx, orderID, status, readyToPack); err != nil {
		return apperr.Internal(fmt.Errorf("apply derivation: %w", err))
	}
	return nil
}
