// Package order owns the order state machine (C5): the Order/Line entities,
// the pure derivation function that is the sole writer of Status and
// ReadyToPack outside explicit operator transitions, and the transitions
// an admin can trigger directly (MarkPacked, RevertToPicking, ChangeState,
// Split, Unsplit).
package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Status string

const (
	StatusOpen         Status = "open"
	StatusPicking      Status = "picking"
	StatusReadyToPack  Status = "ready_to_pack"
	StatusPacked       Status = "packed"
	StatusCancelled    Status = "cancelled"
)

// SystemUserID is stamped as PackedBy when auto-pack fires during import,
// since no operator initiated the transition.
const SystemUserID int64 = 0

// Order is one upstream commerce order aggregated onto the pick surface.
type Order struct {
	ID              int64
	ExternalID      string
	Number          string
	CustomerName    string
	Status          Status
	ReadyToPack     bool
	TotalShipments  int
	CurrentShipment int
	CustomerMessage *string
	EmailSent       bool
	PackedAt        *time.Time
	PackedBy        *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Line is one (order, product) demand row.
type Line struct {
	ID            int64
	OrderID       int64
	ProductID     int64
	QtyOrdered    int
	QtyPicked     int
	QtyShort      int
	ShipmentBatch int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining is the units of this line not yet accounted for.
func (l Line) Remaining() int {
	return l.QtyOrdered - l.QtyPicked - l.QtyShort
}

// Done reports whether this line's demand is fully accounted for.
func (l Line) Done() bool {
	return l.QtyPicked+l.QtyShort == l.QtyOrdered
}

// Repository is the order/line persistence boundary. WithTx binds the
// repository to a caller-owned transaction so pick/import engines can
// read and write orders inside their own transactional boundary.
type Repository interface {
	WithTx(tx pgx.Tx) Repository

	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByExternalID(ctx context.Context, externalID string) (*Order, error)
	LinesByOrder(ctx context.Context, orderID int64) ([]Line, error)

	// UpsertByExternalID creates or updates an order's upstream-sourced
	// fields only (number, customer_name); locally-authored fields
	// (status, ready_to_pack, packed_*, customer_message, email_sent,
	// total_shipments, current_shipment) are left untouched on update.
	UpsertByExternalID(ctx context.Context, externalID, number, customerName string) (*Order, bool, error)

	// UpsertLine creates or updates the (order, product) demand row. On
	// update, qtyOrdered is applied only if it does not shrink below
	// qty_picked+qty_short; the bool return reports whether the clamp
	// was applied (caller counts a sync-warning when true).
	UpsertLine(ctx context.Context, orderID, productID int64, qtyOrdered int) (line *Line, created bool, clamped bool, err error)

	// ApplyDerivation writes the output of Derive back to the order row.
	ApplyDerivation(ctx context.Context, orderID int64, status Status, readyToPack bool) error

	// MarkPackedRow sets status=packed, packed_at=now, packed_by=user.
	MarkPackedRow(ctx context.Context, orderID int64, packedBy int64) error

	// AdvanceShipment increments current_shipment and clears ready_to_pack.
	AdvanceShipment(ctx context.Context, orderID int64) error

	// AutoPack transitions every order absent from the given external-id
	// set, and not already packed/cancelled, to packed/system. Returns the
	// ids touched.
	AutoPack(ctx context.Context, seenExternalIDs []string) ([]int64, error)

	// SetLineShipmentBatches persists Split()'s per-line batch assignment
	// and the order's new total_shipments/current_shipment.
	SetLineShipmentBatches(ctx context.Context, orderID int64, batchByLineID map[int64]int, totalShipments int) error

	// ResetShipmentBatches implements Unsplit(): every line -> batch 1,
	// total_shipments=1, current_shipment=1.
	ResetShipmentBatches(ctx context.Context, orderID int64) error

	// RevertToPicking sets ready_to_pack=false, status=picking, without
	// touching line quantities (the preserve-progress resolution).
	RevertToPicking(ctx context.Context, orderID int64) error

	// ChangeState is the admin-driven ChangeState(open|picking|ready_to_pack)
	// transition out of packed; it clears packed_at/packed_by and, for
	// open/picking, resets current_shipment to 1.
	ChangeState(ctx context.Context, orderID int64, status Status, resetShipment bool) error

	UpdateCustomerMessage(ctx context.Context, orderID int64, message string) error

	List(ctx context.Context, filter ListFilter) ([]Order, int, error)
}

// ListFilter supports the /orders/status, /orders/ready-to-pack,
// /orders/packed surfaces.
type ListFilter struct {
	Status      Status
	ReadyToPack *bool
	Page        int
	Limit       int
}

// Service is the C5 operation surface invoked from C7 handlers and,
// transitively, from C3/C4.
type Service interface {
	Get(ctx context.Context, id int64) (*OrderDetail, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int, error)

	MarkPacked(ctx context.Context, orderID int64, actorID int64) error
	RevertToPicking(ctx context.Context, orderID int64) error
	ChangeState(ctx context.Context, orderID int64, status Status) error
	UpdateMessage(ctx context.Context, orderID int64, message string) error
	Split(ctx context.Context, orderID int64, assignments []LineBatchAssignment) error
	Unsplit(ctx context.Context, orderID int64) error
}

// OrderDetail is the order plus its lines, as returned to the UI.
type OrderDetail struct {
	Order Order
	Lines []Line
}

// LineBatchAssignment is one line's target shipment batch for Split().
type LineBatchAssignment struct {
	LineID int64
	Batch  int
}
