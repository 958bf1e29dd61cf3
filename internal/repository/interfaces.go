package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// Well-known keys of the prompt store.
const (
	KeyActivePrompt   = "activePrompt"
	KeyPromptVersions = "promptVersions"
)

// KVStore is a string key-value store scoped to one profile.
// Get returns ErrNotFound (wrapped) for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// KVTxRunner runs fn against a KVStore whose writes commit together.
// Backends without transactions run fn directly against the store.
type KVTxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, kv KVStore) error) error
}
