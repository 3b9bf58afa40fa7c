// Package pick implements the FIFO pick-allocation engine (C4): PickList,
// Pick, MarkShort, and RevertPickedItem, the hardest subsystem in the
// coordinator. Every mutating operation runs inside a serializable
// transaction and acquires order-line row locks in the fixed
// ORDER BY order.created_at, order.id sequence to avoid deadlocking two
// pickers racing on different SKUs that share an order.
package pick

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type EventKind string

const (
	KindPick   EventKind = "pick"
	KindShort  EventKind = "short"
	KindRevert EventKind = "revert"
)

// Row is one line of PickList(): the aggregate demand for a single SKU
// across every non-packed, non-cancelled order's current shipment batch.
type Row struct {
	SKU         string
	Category    string
	Subcategory *string
	Title       string
	Needed      int
	Picked      int
	Short       int
	Remaining   int
}

// Event is the append-only audit row produced by every mutation.
type Event struct {
	ID          int64
	OrderLineID int64
	UserID      int64
	DeltaQty    int
	Kind        EventKind
	Notes       *string
	CreatedAt   time.Time
}

// LineForPick is the row shape the FIFO walk locks and mutates, joined
// with its owning order for ordering and state-machine purposes.
type LineForPick struct {
	LineID          int64
	OrderID         int64
	OrderExternalID string
	OrderNumber     string
	OrderCreatedAt  time.Time
	CurrentShipment int
	QtyOrdered      int
	QtyPicked       int
	QtyShort        int
}

func (l LineForPick) Remaining() int { return l.QtyOrdered - l.QtyPicked - l.QtyShort }

// Allocation is one order's requested short quantity for MarkShort.
type Allocation struct {
	OrderID  int64
	QtyShort int
}

// OrderTaken records how many units one order received from a Pick call.
type OrderTaken struct {
	OrderID     int64
	OrderNumber string
	QtyTaken    int
}

// PickResult is the outcome of Pick().
type PickResult struct {
	SKU    string
	Orders []OrderTaken
}

// ShortResult is the outcome of MarkShort().
type ShortResult struct {
	SKU        string
	Orders     []OrderTaken
	ExceptionID int64
}

// RevertResult is the outcome of RevertPickedItem().
type RevertResult struct {
	OrderLineID int64
	QtyReverted int
}

// Repository is the pick engine's persistence boundary.
type Repository interface {
	// Aggregate reads PickList() over every SKU with remaining demand.
	Aggregate(ctx context.Context) ([]Row, error)

	// LockLinesForSKU selects and row-locks every order line for sku that
	// still has remaining demand, in FIFO order, inside the caller's
	// transaction. Used by both Pick and the read-only FIFO preview
	// (without the lock, via PreviewLinesForSKU).
	LockLinesForSKU(ctx context.Context, tx pgx.Tx, sku string) ([]LineForPick, error)

	// PreviewLinesForSKU is the same row set as LockLinesForSKU but
	// read-committed, no lock held — backs GET /picklist/{sku}/orders.
	PreviewLinesForSKU(ctx context.Context, sku string) ([]LineForPick, error)

	// LineByID locks and returns a single line for RevertPickedItem.
	LineByID(ctx context.Context, tx pgx.Tx, lineID int64) (LineForPick, error)

	IncrementPicked(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error
	IncrementShort(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error
	DecrementPicked(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error

	InsertEvent(ctx context.Context, tx pgx.Tx, e Event) (int64, error)

	// ListPickEvents returns recent pick events (kind=pick) for the
	// picked-items view, most recent first.
	ListPickEvents(ctx context.Context, limit int) ([]Event, error)
}

// Service is the C4 operation surface.
type Service interface {
	PickList(ctx context.Context) ([]Row, error)
	PreviewOrdersForSKU(ctx context.Context, sku string) ([]LineForPick, error)
	Pick(ctx context.Context, sku string, qty int, userID int64, notes *string) (*PickResult, error)
	MarkShort(ctx context.Context, sku string, allocations []Allocation, userID int64, notes *string) (*ShortResult, error)
	RevertPickedItem(ctx context.Context, lineID int64, qty *int, userID int64) (*RevertResult, error)
	PickedItems(ctx context.Context) ([]Event, error)
}
