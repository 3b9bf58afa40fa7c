// Package stockexception implements C6: aggregating reported shortages per
// SKU, tracking their resolution flags, and feeding the out-of-stock
// notifier.
package stockexception

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// StockException is one shortage-reporting event, snapshotting the
// product and affected orders at the time it was recorded. It is never
// deleted; only its resolved/ordered_from_company/na_cancel flags mutate.
type StockException struct {
	ID                 int64
	SKU                string
	ProductTitle       string
	Category           string
	QtyShort           int
	OrderNumbers       []string
	ReportedBy         int64
	OrderedFromCompany bool
	NACancel           bool
	Resolved           bool
	CreatedAt          time.Time
}

// CreateFields is the input to RecordShortage.
type CreateFields struct {
	SKU          string
	ProductTitle string
	Category     string
	QtyShort     int
	OrderNumbers []string
	ReportedBy   int64
}

// ListFilter supports GET /out-of-stock's resolved flag, date range, and
// free-text filters, plus sort order.
type ListFilter struct {
	Resolved *bool
	Search   string
	From     *time.Time
	To       *time.Time
	SortBy   string // "timestamp" | "sku" | "qty_short" | "vendor"
	Page     int
	Limit    int
}

type Repository interface {
	WithTx(tx pgx.Tx) Repository

	Create(ctx context.Context, f CreateFields) (*StockException, error)
	FindByID(ctx context.Context, id int64) (*StockException, error)
	List(ctx context.Context, filter ListFilter) ([]StockException, int, error)
	SetResolved(ctx context.Context, id int64, resolved bool) error
	ToggleOrderedFromCompany(ctx context.Context, id int64) error
	ToggleNACancel(ctx context.Context, id int64) error
}

// Service is the C6 operation surface.
type Service interface {
	RecordShortage(ctx context.Context, f CreateFields) (*StockException, error)
	ToggleOrderedFromCompany(ctx context.Context, id int64) error
	ToggleNACancel(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]StockException, int, error)
}
