package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/sync/synclog"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) synclog.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Start(ctx context.Context) (*synclog.SyncLog, error) {
	var l synclog.SyncLog
	l.Status = synclog.StatusInProgress
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sync_logs (status) VALUES ('in_progress')
		RETURNING id, status, orders_fetched, orders_created, orders_updated,
			products_created, products_updated, items_created, items_updated,
			error_message, started_at, completed_at
	`).Scan(&l.ID, &l.Status, &l.OrdersFetched, &l.OrdersCreated, &l.OrdersUpdated,
		&l.ProductsCreated, &l.ProductsUpdated, &l.ItemsCreated, &l.ItemsUpdated,
		&l.ErrorMessage, &l.StartedAt, &l.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("start sync log: %w", err)
	}
	return &l, nil
}

func (r *postgresRepository) Complete(ctx context.Context, id int64, c synclog.Counters) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sync_logs SET
			status = 'success',
			orders_fetched = $2, orders_created = $3, orders_updated = $4,
			products_created = $5, products_updated = $6,
			items_created = $7, items_updated = $8,
			completed_at = now()
		WHERE id = $1
	`, id, c.OrdersFetched, c.OrdersCreated, c.OrdersUpdated, c.ProductsCreated, c.ProductsUpdated, c.ItemsCreated, c.ItemsUpdated)
	if err != nil {
		return fmt.Errorf("complete sync log: %w", err)
	}
	return nil
}

func (r *postgresRepository) Fail(ctx context.Context, id int64, errMessage string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE sync_logs SET status = 'error', error_message = $2, completed_at = now()
		WHERE id = $1
	`, id, errMessage)
	if err != nil {
		return fmt.Errorf("fail sync log: %w", err)
	}
	return nil
}

func (r *postgresRepository) Latest(ctx context.Context) (*synclog.SyncLog, error) {
	var l synclog.SyncLog
	err := r.pool.QueryRow(ctx, `
		SELECT id, status, orders_fetched, orders_created, orders_updated,
			products_created, products_updated, items_created, items_updated,
			error_message, started_at, completed_at
		FROM sync_logs ORDER BY started_at DESC LIMIT 1
	`).Scan(&l.ID, &l.Status, &l.OrdersFetched, &l.OrdersCreated, &l.OrdersUpdated,
		&l.ProductsCreated, &l.ProductsUpdated, &l.ItemsCreated, &l.ItemsUpdated,
		&l.ErrorMessage, &l.StartedAt, &l.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest sync log: %w", err)
	}
	return &l, nil
}

func (r *postgresRepository) AnyInProgress(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM sync_logs WHERE status = 'in_progress')`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sync in progress: %w", err)
	}
	return exists, nil
}
