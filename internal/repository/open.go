package repository

import (
	"context"
	"fmt"

	"github.com/Spunkeroo/scam-stream/internal/config"
	"github.com/Spunkeroo/scam-stream/internal/db"
)

// Open builds the KV backend named by cfg.StorageBackend. The returned close
// function releases the backend's connections and is never nil.
func Open(ctx context.Context, cfg *config.Config) (KV, func(), error) {
	switch cfg.StorageBackend {
	case "", "memory":
		return NewMemoryRepo(), func() {}, nil

	case "redis":
		r, err := NewRedisRepo(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		r, err := NewPostgresRepo(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return r, pool.Close, nil

	case "sqlite":
		r, err := NewSQLiteRepo(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil

	case "dynamodb":
		r, err := NewDynamoRepo(ctx, cfg.AWSRegion, cfg.DynamoTable)
		if err != nil {
			return nil, nil, err
		}
		return r, func() {}, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
}
