package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo stores values in a single kv_store table.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo creates the kv_store table if needed.
func NewPostgresRepo(ctx context.Context, pool *pgxpool.Pool) (*PostgresRepo, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (r *PostgresRepo) Remove(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Pool returns the underlying pool (for pool metrics).
func (r *PostgresRepo) Pool() *pgxpool.Pool {
	return r.pool
}
