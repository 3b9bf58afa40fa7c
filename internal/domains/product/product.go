// Package product owns the catalog entity imported from the upstream feed:
// one row per SKU, never deleted, referenced by order lines.
package product

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Product mirrors one SKU as last seen from the upstream catalog. Fields
// the upstream document omits for a given item are left at their existing
// value on update — the importer never overwrites a present field with a
// blank one. Price is a decimal.Decimal rather than a float so the NUMERIC
// column round-trips exactly; the upstream feed's JSON numbers decode
// straight into it.
type Product struct {
	ID                int64
	SKU               string
	Title             string
	Category          string
	Subcategory       *string
	ImageURL          *string
	Price             *decimal.Decimal
	VendorName        *string
	VariationDetails  *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UpsertFields is the upstream-sourced projection the importer writes on
// every Sync(); it never carries qty or order data, which lives on
// OrderLine instead.
type UpsertFields struct {
	SKU              string
	Title            string
	Category         string
	Subcategory      *string
	ImageURL         *string
	Price            *decimal.Decimal
	VendorName       *string
	VariationDetails *string
}

// Repository is the persistence boundary for products. WithTx binds the
// repository to a caller-owned transaction so the import engine can
// upsert products in the same transaction as orders and lines.
type Repository interface {
	WithTx(tx pgx.Tx) Repository

	// Upsert creates or updates a product by SKU, returning the row and
	// whether it was newly created.
	Upsert(ctx context.Context, fields UpsertFields) (*Product, bool, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, int, error)
}

// ListRequest filters the product catalog, e.g. for admin browsing.
type ListRequest struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// Service is the product domain's read surface; products are otherwise
// mutated only by the import engine (C3).
type Service interface {
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, int, error)
}
