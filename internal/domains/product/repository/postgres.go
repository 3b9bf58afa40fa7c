package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/product"
	db "warehouse-pick-coordinator/pkg/database"
)

type postgresRepository struct {
	db db.Querier
}

func NewPostgresRepository(pool *pgxpool.Pool) product.Repository {
	return &postgresRepository{db: pool}
}

func (r *postgresRepository) WithTx(tx pgx.Tx) product.Repository {
	return &postgresRepository{db: tx}
}

// Upsert writes the upstream-sourced fields, never clobbering an existing
// non-blank field with a blank incoming one — the coalesce-on-write shape
// mirrors the import engine's "never overwrite a locally assigned field
// that has no upstream counterpart" rule applied at the column level.
func (r *postgresRepository) Upsert(ctx context.Context, f product.UpsertFields) (*product.Product, bool, error) {
	query := `
		INSERT INTO products (sku, title, category, subcategory, image_url, price, vendor_name, variation_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sku) DO UPDATE SET
			title             = EXCLUDED.title,
			category          = EXCLUDED.category,
			subcategory       = COALESCE(EXCLUDED.subcategory, products.subcategory),
			image_url         = COALESCE(EXCLUDED.image_url, products.image_url),
			price             = COALESCE(EXCLUDED.price, products.price),
			vendor_name       = COALESCE(EXCLUDED.vendor_name, products.vendor_name),
			variation_details = COALESCE(EXCLUDED.variation_details, products.variation_details),
			updated_at        = now()
		RETURNING id, sku, title, category, subcategory, image_url, price, vendor_name, variation_details,
			created_at, updated_at, (xmax = 0) AS inserted
	`
	var p product.Product
	var inserted bool
	err := r.db.QueryRow(ctx, query, f.SKU, f.Title, f.Category, f.Subcategory, f.ImageURL, f.Price, f.VendorName, f.VariationDetails).
		Scan(&p.ID, &p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.ImageURL, &p.Price, &p.VendorName, &p.VariationDetails,
			&p.CreatedAt, &p.UpdatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert product: %w", err)
	}
	return &p, inserted, nil
}

func (r *postgresRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectProductColumns+` WHERE sku = $1`, sku))
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	return r.scanOne(r.db.QueryRow(ctx, selectProductColumns+` WHERE id = $1`, id))
}

const selectProductColumns = `
	SELECT id, sku, title, category, subcategory, image_url, price, vendor_name, variation_details, created_at, updated_at
	FROM products`

func (r *postgresRepository) scanOne(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.ImageURL, &p.Price, &p.VendorName, &p.VariationDetails,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context, req product.ListRequest) ([]product.Product, int, error) {
	var clauses []string
	var args []interface{}
	pos := 1
	if req.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category = $%d", pos))
		args = append(args, req.Category)
		pos++
	}
	if req.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR sku ILIKE $%d)", pos, pos))
		args = append(args, "%"+req.Search+"%")
		pos++
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM products %s", where), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (req.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		%s %s ORDER BY id LIMIT $%d OFFSET $%d
	`, selectProductColumns, where, pos, pos+1), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]product.Product, 0, limit)
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Title, &p.Category, &p.Subcategory, &p.ImageURL, &p.Price, &p.VendorName, &p.VariationDetails,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration: %w", err)
	}
	return products, total, nil
}
