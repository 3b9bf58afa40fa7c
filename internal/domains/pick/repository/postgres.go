package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/pick"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) pick.Repository {
	return &postgresRepository{pool: pool}
}

// Aggregate backs PickList(): one row per SKU with remaining demand across
// every non-packed, non-cancelled order's current shipment batch.
func (r *postgresRepository) Aggregate(ctx context.Context) ([]pick.Row, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.sku, p.category, p.subcategory, p.title,
			SUM(ol.qty_ordered) AS needed,
			SUM(ol.qty_picked) AS picked,
			SUM(ol.qty_short) AS short
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN products p ON p.id = ol.product_id
		WHERE o.status NOT IN ('packed', 'cancelled')
			AND ol.shipment_batch = o.current_shipment
		GROUP BY p.sku, p.category, p.subcategory, p.title
		HAVING SUM(ol.qty_ordered) - SUM(ol.qty_picked) - SUM(ol.qty_short) > 0
		ORDER BY p.sku
	`)
	if err != nil {
		return nil, fmt.Errorf("aggregate pick list: %w", err)
	}
	defer rows.Close()

	var result []pick.Row
	for rows.Next() {
		var row pick.Row
		if err := rows.Scan(&row.SKU, &row.Category, &row.Subcategory, &row.Title, &row.Needed, &row.Picked, &row.Short); err != nil {
			return nil, fmt.Errorf("scan pick row: %w", err)
		}
		row.Remaining = row.Needed - row.Picked - row.Short
		result = append(result, row)
	}
	return result, rows.Err()
}

const linesForSKUQuery = `
	SELECT ol.id, o.id, o.external_id, o.number, o.created_at, o.current_shipment,
		ol.qty_ordered, ol.qty_picked, ol.qty_short
	FROM order_lines ol
	JOIN orders o ON o.id = ol.order_id
	JOIN products p ON p.id = ol.product_id
	WHERE p.sku = $1
		AND o.status NOT IN ('packed', 'cancelled')
		AND ol.shipment_batch = o.current_shipment
		AND ol.qty_picked + ol.qty_short < ol.qty_ordered
	ORDER BY o.created_at ASC, o.id ASC`

func scanLines(rows pgx.Rows) ([]pick.LineForPick, error) {
	defer rows.Close()
	var lines []pick.LineForPick
	for rows.Next() {
		var l pick.LineForPick
		if err := rows.Scan(&l.LineID, &l.OrderID, &l.OrderExternalID, &l.OrderNumber, &l.OrderCreatedAt, &l.CurrentShipment,
			&l.QtyOrdered, &l.QtyPicked, &l.QtyShort); err != nil {
			return nil, fmt.Errorf("scan pick line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// LockLinesForSKU acquires FOR UPDATE row locks in the fixed
// ORDER BY order.created_at, order.id sequence required by the
// concurrency contract.
func (r *postgresRepository) LockLinesForSKU(ctx context.Context, tx pgx.Tx, sku string) ([]pick.LineForPick, error) {
	rows, err := tx.Query(ctx, linesForSKUQuery+` FOR UPDATE OF ol`, sku)
	if err != nil {
		return nil, fmt.Errorf("lock lines for sku: %w", err)
	}
	return scanLines(rows)
}

func (r *postgresRepository) PreviewLinesForSKU(ctx context.Context, sku string) ([]pick.LineForPick, error) {
	rows, err := r.pool.Query(ctx, linesForSKUQuery, sku)
	if err != nil {
		return nil, fmt.Errorf("preview lines for sku: %w", err)
	}
	return scanLines(rows)
}

func (r *postgresRepository) LineByID(ctx context.Context, tx pgx.Tx, lineID int64) (pick.LineForPick, error) {
	row := tx.QueryRow(ctx, `
		SELECT ol.id, o.id, o.external_id, o.number, o.created_at, o.current_shipment,
			ol.qty_ordered, ol.qty_picked, ol.qty_short
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		WHERE ol.id = $1
		FOR UPDATE OF ol
	`, lineID)
	var l pick.LineForPick
	err := row.Scan(&l.LineID, &l.OrderID, &l.OrderExternalID, &l.OrderNumber, &l.OrderCreatedAt, &l.CurrentShipment,
		&l.QtyOrdered, &l.QtyPicked, &l.QtyShort)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pick.LineForPick{}, pick.ErrLineNotFound
		}
		return pick.LineForPick{}, fmt.Errorf("load line for revert: %w", err)
	}
	return l, nil
}

func (r *postgresRepository) IncrementPicked(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error {
	_, err := tx.Exec(ctx, `UPDATE order_lines SET qty_picked = qty_picked + $2, updated_at = now() WHERE id = $1`, lineID, delta)
	if err != nil {
		return fmt.Errorf("increment picked: %w", err)
	}
	return nil
}

func (r *postgresRepository) IncrementShort(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error {
	_, err := tx.Exec(ctx, `UPDATE order_lines SET qty_short = qty_short + $2, updated_at = now() WHERE id = $1`, lineID, delta)
	if err != nil {
		return fmt.Errorf("increment short: %w", err)
	}
	return nil
}

func (r *postgresRepository) DecrementPicked(ctx context.Context, tx pgx.Tx, lineID int64, delta int) error {
	_, err := tx.Exec(ctx, `UPDATE order_lines SET qty_picked = qty_picked - $2, updated_at = now() WHERE id = $1`, lineID, delta)
	if err != nil {
		return fmt.Errorf("decrement picked: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListPickEvents(ctx context.Context, limit int) ([]pick.Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_line_id, user_id, delta_qty, kind, notes, created_at
		FROM pick_events WHERE kind = 'pick' ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pick events: %w", err)
	}
	defer rows.Close()

	var events []pick.Event
	for rows.Next() {
		var e pick.Event
		if err := rows.Scan(&e.ID, &e.OrderLineID, &e.UserID, &e.DeltaQty, &e.Kind, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pick event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresRepository) InsertEvent(ctx context.Context, tx pgx.Tx, e pick.Event) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO pick_events (order_line_id, user_id, delta_qty, kind, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, e.OrderLineID, e.UserID, e.DeltaQty, e.Kind, e.Notes).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert pick event: %w", err)
	}
	return id, nil
}
