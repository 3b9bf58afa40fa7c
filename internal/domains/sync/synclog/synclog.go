// Package synclog persists the audit trail of every import run: one row
// per Sync() invocation, created in_progress and closed out success/error.
package synclog

import (
	"context"
	"time"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

type SyncLog struct {
	ID              int64
	Status          Status
	OrdersFetched   int
	OrdersCreated   int
	OrdersUpdated   int
	ProductsCreated int
	ProductsUpdated int
	ItemsCreated    int
	ItemsUpdated    int
	ErrorMessage    *string
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// Counters is the mutable tally the importer accumulates across a run and
// writes back at completion.
type Counters struct {
	OrdersFetched   int
	OrdersCreated   int
	OrdersUpdated   int
	ProductsCreated int
	ProductsUpdated int
	ItemsCreated    int
	ItemsUpdated    int
}

type Repository interface {
	// Start inserts a row with status=in_progress, committed immediately
	// so concurrent observers can see the in-flight sync.
	Start(ctx context.Context) (*SyncLog, error)
	Complete(ctx context.Context, id int64, counters Counters) error
	Fail(ctx context.Context, id int64, errMessage string) error
	Latest(ctx context.Context) (*SyncLog, error)
	// AnyInProgress backs the SyncBusy advisory check at trigger entry.
	AnyInProgress(ctx context.Context) (bool, error)
}
