package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/order"
	db "warehouse-pick-coordinator/pkg/database"
)

type postgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool) order.Repository {
	return &postgresRepository{db: pool}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) order.Repository {
	return &postgresRepository{db: tx}
}

const selectOrderColumns = `
	SELECT id, external_id, number, customer_name, status, ready_to_pack, total_shipments,
		current_shipment, customer_message, email_sent, packed_at, packed_by, created_at, updated_at
	FROM orders`

func (r *postgresRepository) scanOne(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack, &o.TotalShipments,
		&o.CurrentShipment, &o.CustomerMessage, &o.EmailSent, &o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectOrderColumns+` WHERE id = $1`, id))
}

func (r *postgresRepository) FindByExternalID(ctx context.Context, externalID string) (*order.Order, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectOrderColumns+` WHERE external_id = $1`, externalID))
}

func (r *postgresRepository) LinesByOrder(ctx context.Context, orderID int64) ([]order.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, qty_ordered, qty_picked, qty_short, shipment_batch, created_at, updated_at
		FROM order_lines WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// UpsertByExternalID preserves every locally-authored column on update,
// per spec's "preserve status/ready_to_pack/packed_*/customer_message/
// email_sent/total_shipments/current_shipment on re-sync" rule.
func (r *postgresRepository) UpsertByExternalID(ctx context.Context, externalID, number, customerName string) (*order.Order, bool, error) {
	query := `
		INSERT INTO orders (external_id, number, customer_name, status, ready_to_pack, total_shipments, current_shipment, email_sent)
		VALUES ($1, $2, $3, 'open', FALSE, 1, 1, FALSE)
		ON CONFLICT (external_id) DO UPDATE SET
			number        = EXCLUDED.number,
			customer_name = EXCLUDED.customer_name,
			updated_at    = now()
		RETURNING id, external_id, number, customer_name, status, ready_to_pack, total_shipments,
			current_shipment, customer_message, email_sent, packed_at, packed_by, created_at, updated_at,
			(xmax = 0) AS inserted
	`
	var o order.Order
	var inserted bool
	err := r.db.QueryRow(ctx, query, externalID, number, customerName).Scan(
		&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack, &o.TotalShipments,
		&o.CurrentShipment, &o.CustomerMessage, &o.EmailSent, &o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert order: %w", err)
	}
	return &o, inserted, nil
}

// UpsertLine applies the shrink-clamp rule from spec §4.2 step 6: the new
// qty_ordered is only written if it would not fall below qty_picked+qty_short.
func (r *postgresRepository) UpsertLine(ctx context.Context, orderID, productID int64, qtyOrdered int) (*order.Line, bool, bool, error) {
	query := `
		INSERT INTO order_lines (order_id, product_id, qty_ordered, qty_picked, qty_short, shipment_batch)
		VALUES ($1, $2, $3, 0, 0, 1)
		ON CONFLICT (order_id, product_id) DO UPDATE SET
			qty_ordered = CASE WHEN $3 >= order_lines.qty_picked + order_lines.qty_short
				THEN $3 ELSE order_lines.qty_ordered END,
			updated_at = now()
		RETURNING id, order_id, product_id, qty_ordered, qty_picked, qty_short, shipment_batch, created_at, updated_at,
			(xmax = 0) AS inserted
	`
	var l order.Line
	var inserted bool
	err := r.db.QueryRow(ctx, query, orderID, productID, qtyOrdered).Scan(
		&l.ID, &l.OrderID, &l.ProductID, &l.QtyOrdered, &l.QtyPicked, &l.QtyShort, &l.ShipmentBatch, &l.CreatedAt, &l.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, false, fmt.Errorf("upsert order line: %w", err)
	}
	clamped := !inserted && l.QtyOrdered != qtyOrdered
	return &l, inserted, clamped, nil
}

func (r *postgresRepository) ApplyDerivation(ctx context.Context, orderID int64, status order.Status, readyToPack bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2, ready_to_pack = $3, updated_at = now() WHERE id = $1
	`, orderID, status, readyToPack)
	if err != nil {
		return fmt.Errorf("apply derivation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) MarkPackedRow(ctx context.Context, orderID int64, packedBy int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = 'packed', ready_to_pack = FALSE, packed_at = now(), packed_by = $2, updated_at = now()
		WHERE id = $1
	`, orderID, packedBy)
	if err != nil {
		return fmt.Errorf("mark packed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) AdvanceShipment(ctx context.Context, orderID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET current_shipment = current_shipment + 1, ready_to_pack = FALSE, updated_at = now()
		WHERE id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("advance shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) AutoPack(ctx context.Context, seenExternalIDs []string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE orders SET status = 'packed', ready_to_pack = FALSE, packed_at = now(), packed_by = $1, updated_at = now()
		WHERE status NOT IN ('packed', 'cancelled') AND NOT (external_id = ANY($2))
		RETURNING id
	`, order.SystemUserID, seenExternalIDs)
	if err != nil {
		return nil, fmt.Errorf("auto-pack vanished orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan auto-packed id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresRepository) SetLineShipmentBatches(ctx context.Context, orderID int64, batchByLineID map[int64]int, totalShipments int) error {
	for lineID, batch := range batchByLineID {
		if _, err := r.db.Exec(ctx, `UPDATE order_lines SET shipment_batch = $2, updated_at = now() WHERE id = $1 AND order_id = $3`, lineID, batch, orderID); err != nil {
			return fmt.Errorf("set line shipment batch: %w", err)
		}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET total_shipments = $2, current_shipment = 1, updated_at = now() WHERE id = $1
	`, orderID, totalShipments)
	if err != nil {
		return fmt.Errorf("set order shipment totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) ResetShipmentBatches(ctx context.Context, orderID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE order_lines SET shipment_batch = 1, updated_at = now() WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("reset line shipment batches: %w", err)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET total_shipments = 1, current_shipment = 1, updated_at = now() WHERE id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("reset order shipment totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) RevertToPicking(ctx context.Context, orderID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = 'picking', ready_to_pack = FALSE, updated_at = now() WHERE id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("revert to picking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) ChangeState(ctx context.Context, orderID int64, status order.Status, resetShipment bool) error {
	query := `UPDATE orders SET status = $2, packed_at = NULL, packed_by = NULL, updated_at = now()`
	if resetShipment {
		query += `, current_shipment = 1`
	}
	query += ` WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("change state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateCustomerMessage(ctx context.Context, orderID int64, message string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET customer_message = $2, updated_at = now() WHERE id = $1`, orderID, message)
	if err != nil {
		return fmt.Errorf("update customer message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int, error) {
	var clauses []string
	var args []interface{}
	pos := 1
	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", pos))
		args = append(args, filter.Status)
		pos++
	}
	if filter.ReadyToPack != nil {
		clauses = append(clauses, fmt.Sprintf("ready_to_pack = $%d", pos))
		args = append(args, *filter.ReadyToPack)
		pos++
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM orders %s", where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		%s %s ORDER BY created_at LIMIT $%d OFFSET $%d
	`, selectOrderColumns, where, pos, pos+1), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0, limit)
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.ExternalID, &o.Number, &o.CustomerName, &o.Status, &o.ReadyToPack, &o.TotalShipments,
			&o.CurrentShipment, &o.CustomerMessage, &o.EmailSent, &o.PackedAt, &o.PackedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}
