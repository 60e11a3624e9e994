package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a persisted value cannot be decoded.
	ErrCorrupt = errors.New("corrupt stored value")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrValueTooLarge is returned by backends that cap the size of one value.
	ErrValueTooLarge = errors.New("stored value too large")
)

// KV is the key/value string storage every feature persists through.
// A missing key is reported as ok == false, not as an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GetJSON decodes the JSON value stored under key into dst.
// It returns ok == false when the key is absent and wraps ErrCorrupt when the
// stored value is not valid JSON for dst.
func GetJSON(ctx context.Context, kv KV, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
