package repository

import (
	"context"
	"sync"
)

// MemoryRepo keeps everything in process memory. Data is lost on restart.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]string)}
}

func (r *MemoryRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	return v, ok, nil
}

func (r *MemoryRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	r.data[key] = value
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.data, key)
	r.mu.Unlock()
	return nil
}

// Len returns the number of stored keys.
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
