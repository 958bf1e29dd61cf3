package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryKVRepo is a process-local KVStore. Nothing survives a restart.
type MemoryKVRepo struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryKVRepo() *MemoryKVRepo {
	return &MemoryKVRepo{entries: make(map[string]string)}
}

func (r *MemoryKVRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	if !ok {
		return "", fmt.Errorf("kv %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (r *MemoryKVRepo) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
	return nil
}

func (r *MemoryKVRepo) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}

// DirectTx adapts a KVStore without transactions to KVTxRunner.
// Writes made before fn fails are not undone.
type DirectTx struct {
	Store KVStore
}

func (d DirectTx) WithinTx(ctx context.Context, fn func(ctx context.Context, kv KVStore) error) error {
	return fn(ctx, d.Store)
}
