package database

import (
	"context"
	"fmt"
	"log"
)

// schemaStatements holds the initial schema, applied in order at boot. The
// teacher runs migrations out-of-band (golang-migrate style .sql files
// under a migrations/ directory); this repo keeps the same statement
// shapes but applies them inline through the already-connected pool so a
// fresh database is usable immediately after Connect(), matching the
// smaller operational footprint of a single-purpose coordinator service.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		username        TEXT NOT NULL UNIQUE,
		password_hash   TEXT NOT NULL,
		full_name       TEXT NOT NULL,
		role            TEXT NOT NULL CHECK (role IN ('staff','admin','superadmin')),
		is_active       BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id                 BIGSERIAL PRIMARY KEY,
		sku                TEXT NOT NULL UNIQUE,
		title              TEXT NOT NULL,
		category           TEXT NOT NULL,
		subcategory        TEXT,
		image_url          TEXT,
		price              NUMERIC(12,2),
		vendor_name        TEXT,
		variation_details  TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category, subcategory)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                BIGSERIAL PRIMARY KEY,
		external_id       TEXT NOT NULL UNIQUE,
		number            TEXT NOT NULL,
		customer_name     TEXT NOT NULL,
		status            TEXT NOT NULL CHECK (status IN ('open','picking','ready_to_pack','packed','cancelled')),
		ready_to_pack     BOOLEAN NOT NULL DEFAULT FALSE,
		total_shipments   INT NOT NULL DEFAULT 1 CHECK (total_shipments >= 1),
		current_shipment  INT NOT NULL DEFAULT 1 CHECK (current_shipment >= 1),
		customer_message  TEXT,
		email_sent        BOOLEAN NOT NULL DEFAULT FALSE,
		packed_at         TIMESTAMPTZ,
		packed_by         BIGINT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (current_shipment <= total_shipments)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_ready_to_pack ON orders (ready_to_pack)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at)`,

	`CREATE TABLE IF NOT EXISTS order_lines (
		id              BIGSERIAL PRIMARY KEY,
		order_id        BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id      BIGINT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		qty_ordered     INT NOT NULL CHECK (qty_ordered > 0),
		qty_picked      INT NOT NULL DEFAULT 0 CHECK (qty_picked >= 0),
		qty_short       INT NOT NULL DEFAULT 0 CHECK (qty_short >= 0),
		shipment_batch  INT NOT NULL DEFAULT 1 CHECK (shipment_batch >= 1),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (order_id, product_id),
		CHECK (qty_picked + qty_short <= qty_ordered)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_product ON order_lines (product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_lines_order ON order_lines (order_id)`,

	`CREATE TABLE IF NOT EXISTS pick_events (
		id              BIGSERIAL PRIMARY KEY,
		order_line_id   BIGINT NOT NULL REFERENCES order_lines(id) ON DELETE RESTRICT,
		user_id         BIGINT NOT NULL REFERENCES users(id),
		delta_qty       INT NOT NULL,
		kind            TEXT NOT NULL CHECK (kind IN ('pick','short','revert')),
		notes           TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pick_events_line ON pick_events (order_line_id)`,
	`CREATE INDEX IF NOT EXISTS idx_pick_events_created_at ON pick_events (created_at)`,

	`CREATE TABLE IF NOT EXISTS stock_exceptions (
		id                   BIGSERIAL PRIMARY KEY,
		sku                  TEXT NOT NULL,
		product_title        TEXT NOT NULL,
		category             TEXT NOT NULL,
		qty_short            INT NOT NULL,
		order_numbers        TEXT[] NOT NULL DEFAULT '{}',
		reported_by          BIGINT NOT NULL REFERENCES users(id),
		ordered_from_company BOOLEAN NOT NULL DEFAULT FALSE,
		na_cancel            BOOLEAN NOT NULL DEFAULT FALSE,
		resolved             BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_exceptions_resolved ON stock_exceptions (resolved)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_exceptions_timestamp ON stock_exceptions (created_at)`,

	`CREATE TABLE IF NOT EXISTS sync_logs (
		id               BIGSERIAL PRIMARY KEY,
		status           TEXT NOT NULL CHECK (status IN ('in_progress','success','error')),
		orders_fetched   INT NOT NULL DEFAULT 0,
		orders_created   INT NOT NULL DEFAULT 0,
		orders_updated   INT NOT NULL DEFAULT 0,
		products_created INT NOT NULL DEFAULT 0,
		products_updated INT NOT NULL DEFAULT 0,
		items_created    INT NOT NULL DEFAULT 0,
		items_updated    INT NOT NULL DEFAULT 0,
		error_message    TEXT,
		started_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at     TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_logs_started_at ON sync_logs (started_at DESC)`,

	`CREATE TABLE IF NOT EXISTS singletons (
		name        TEXT PRIMARY KEY,
		data        JSONB NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`INSERT INTO singletons (name, data) VALUES
		('api_config', '{"api_base_url":"","api_key":"","sync_interval_minutes":15}'),
		('notifier_config', '{"email_recipients":[],"sms_recipients":[]}')
	ON CONFLICT (name) DO NOTHING`,
}

// ApplyMigrations runs the initial schema against an already-connected
// pool. Idempotent — every statement is guarded with IF NOT EXISTS /
// ON CONFLICT so it is safe to call on every boot.
func (db *PostgresDB) ApplyMigrations(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	for i, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i, err)
		}
	}

	log.Println("[DATABASE] Schema migrations applied")
	return nil
}
