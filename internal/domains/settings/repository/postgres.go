package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"warehouse-pick-coordinator/internal/domains/settings"
)

const (
	keyAPIConfig      = "api_config"
	keyNotifierConfig = "notifier_config"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) settings.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) getJSON(ctx context.Context, name string, dest interface{}) error {
	var raw []byte
	if err := r.pool.QueryRow(ctx, `SELECT data FROM singletons WHERE name = $1`, name).Scan(&raw); err != nil {
		return fmt.Errorf("load singleton %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode singleton %s: %w", name, err)
	}
	return nil
}

func (r *postgresRepository) putJSON(ctx context.Context, name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode singleton %s: %w", name, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO singletons (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, name, raw)
	if err != nil {
		return fmt.Errorf("store singleton %s: %w", name, err)
	}
	return nil
}

func (r *postgresRepository) GetAPIConfig(ctx context.Context) (*settings.APIConfig, error) {
	var cfg settings.APIConfig
	if err := r.getJSON(ctx, keyAPIConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *postgresRepository) PutAPIConfig(ctx context.Context, cfg settings.APIConfig) error {
	return r.putJSON(ctx, keyAPIConfig, cfg)
}

// StampLastSync updates only the last-run bookkeeping fields, leaving the
// operator-configured URL/key/interval untouched — one UPDATE that merges
// the two fields into the stored JSON under the singleton's row lock.
func (r *postgresRepository) StampLastSync(ctx context.Context, at time.Time, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE singletons
		SET data = data || jsonb_build_object('last_sync_at', $2::timestamptz, 'last_sync_status', $3::text),
		    updated_at = now()
		WHERE name = $1
	`, keyAPIConfig, at, status)
	if err != nil {
		return fmt.Errorf("stamp last sync: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetNotifierConfig(ctx context.Context) (*settings.NotifierConfig, error) {
	var cfg settings.NotifierConfig
	if err := r.getJSON(ctx, keyNotifierConfig, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *postgresRepository) PutNotifierConfig(ctx context.Context, cfg settings.NotifierConfig) error {
	return r.putJSON(ctx, keyNotifierConfig, cfg)
}
