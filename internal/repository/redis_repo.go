package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "scamstream:"

// RedisRepo stores values as plain Redis strings without expiry.
type RedisRepo struct {
	rdb *redis.Client
}

// NewRedisRepo connects to redisURL and verifies the connection with a ping.
func NewRedisRepo(ctx context.Context, redisURL string) (*RedisRepo, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisRepo{rdb: rdb}, nil
}

func (r *RedisRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisRepo) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, redisKey(key), value, 0).Err()
}

func (r *RedisRepo) Remove(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, redisKey(key)).Err()
}

func (r *RedisRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisRepo) Close() error {
	return r.rdb.Close()
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}
