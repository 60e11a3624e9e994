package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Spunkeroo/scam-stream/internal/config"
)

func TestOpen_Memory(t *testing.T) {
	kv, closeFn, err := Open(context.Background(), &config.Config{StorageBackend: "memory"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if _, ok := kv.(*MemoryRepo); !ok {
		t.Fatalf("got %T, want *MemoryRepo", kv)
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "kv.db"),
	}
	kv, closeFn, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if _, ok := kv.(Pinger); !ok {
		t.Fatal("sqlite backend should support Ping")
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), &config.Config{StorageBackend: "floppy"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}
