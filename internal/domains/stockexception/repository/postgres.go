package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/stockexception"
	db "warehouse-pick-coordinator/pkg/database"
)

type postgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool) stockexception.Repository {
	return &postgresRepository{db: pool}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) stockexception.Repository {
	return &postgresRepository{db: tx}
}

func (r *postgresRepository) Create(ctx context.Context, f stockexception.CreateFields) (*stockexception.StockException, error) {
	query := `
		INSERT INTO stock_exceptions (sku, product_title, category, qty_short, order_numbers, reported_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, sku, product_title, category, qty_short, order_numbers, reported_by,
			ordered_from_company, na_cancel, resolved, created_at
	`
	var se stockexception.StockException
	err := r.db.QueryRow(ctx, query, f.SKU, f.ProductTitle, f.Category, f.QtyShort, f.OrderNumbers, f.ReportedBy).Scan(
		&se.ID, &se.SKU, &se.ProductTitle, &se.Category, &se.QtyShort, &se.OrderNumbers, &se.ReportedBy,
		&se.OrderedFromCompany, &se.NACancel, &se.Resolved, &se.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create stock exception: %w", err)
	}
	return &se, nil
}

const selectColumns = `
	SELECT id, sku, product_title, category, qty_short, order_numbers, reported_by,
		ordered_from_company, na_cancel, resolved, created_at
	FROM stock_exceptions`

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*stockexception.StockException, error) {
	var se stockexception.StockException
	err := r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id).Scan(
		&se.ID, &se.SKU, &se.ProductTitle, &se.Category, &se.QtyShort, &se.OrderNumbers, &se.ReportedBy,
		&se.OrderedFromCompany, &se.NACancel, &se.Resolved, &se.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stockexception.ErrNotFound
		}
		return nil, fmt.Errorf("find stock exception: %w", err)
	}
	return &se, nil
}

func (r *postgresRepository) List(ctx context.Context, filter stockexception.ListFilter) ([]stockexception.StockException, int, error) {
	var clauses []string
	var args []interface{}
	pos := 1
	if filter.Resolved != nil {
		clauses = append(clauses, fmt.Sprintf("resolved = $%d", pos))
		args = append(args, *filter.Resolved)
		pos++
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(sku ILIKE $%d OR product_title ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(order_numbers) n WHERE n ILIKE $%d))",
			pos, pos, pos))
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	if filter.From != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", pos))
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", pos))
		args = append(args, *filter.To)
		pos++
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM stock_exceptions %s", where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock exceptions: %w", err)
	}

	orderBy := "created_at DESC"
	switch filter.SortBy {
	case "sku":
		orderBy = "sku ASC"
	case "qty_short":
		orderBy = "qty_short DESC"
	case "vendor":
		orderBy = "product_title ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		%s %s ORDER BY %s LIMIT $%d OFFSET $%d
	`, selectColumns, where, orderBy, pos, pos+1), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock exceptions: %w", err)
	}
	defer rows.Close()

	var list []stockexception.StockException
	for rows.Next() {
		var se stockexception.StockException
		if err := rows.Scan(&se.ID, &se.SKU, &se.ProductTitle, &se.Category, &se.QtyShort, &se.OrderNumbers, &se.ReportedBy,
			&se.OrderedFromCompany, &se.NACancel, &se.Resolved, &se.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock exception: %w", err)
		}
		list = append(list, se)
	}
	return list, total, rows.Err()
}

func (r *postgresRepository) SetResolved(ctx context.Context, id int64, resolved bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE stock_exceptions SET resolved = $2 WHERE id = $1`, id, resolved)
	if err != nil {
		return fmt.Errorf("set resolved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return stockexception.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) ToggleOrderedFromCompany(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE stock_exceptions SET ordered_from_company = NOT ordered_from_company WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("toggle ordered from company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return stockexception.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) ToggleNACancel(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE stock_exceptions SET na_cancel = NOT na_cancel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("toggle na cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return stockexception.ErrNotFound
	}
	return nil
}
