package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/alexanderramin/pursuit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kvBackend struct {
	name  string
	store func(t *testing.T, profile string) KVStore
	tx    func(t *testing.T, profile string) KVTxRunner
}

func kvBackends(t *testing.T) []kvBackend {
	t.Helper()
	database := testutil.NewTestDB(t)
	mem := map[string]*MemoryKVRepo{}
	memFor := func(profile string) *MemoryKVRepo {
		if mem[profile] == nil {
			mem[profile] = NewMemoryKVRepo()
		}
		return mem[profile]
	}

	backends := []kvBackend{
		{
			name:  "sqlite",
			store: func(_ *testing.T, p string) KVStore { return NewSQLiteKVRepo(database, p) },
			tx: func(_ *testing.T, p string) KVTxRunner {
				return NewSQLiteKVTxRunner(testutil.NewTestUoW(database), p)
			},
		},
		{
			name:  "memory",
			store: func(_ *testing.T, p string) KVStore { return memFor(p) },
			tx:    func(_ *testing.T, p string) KVTxRunner { return DirectTx{Store: memFor(p)} },
		},
	}

	if addr := os.Getenv("PURSUIT_TEST_REDIS_ADDR"); addr != "" {
		rdb, err := DialRedis(context.Background(), addr)
		require.NoError(t, err)
		t.Cleanup(func() { rdb.Close() })
		backends = append(backends, kvBackend{
			name:  "redis",
			store: func(_ *testing.T, p string) KVStore { return NewRedisKVRepo(rdb, "test-"+t.Name()+p) },
			tx:    func(_ *testing.T, p string) KVTxRunner { return NewRedisKVTxRunner(rdb, "test-"+t.Name()+p) },
		})
	}
	return backends
}

func TestKVStore_GetMissingReturnsNotFound(t *testing.T) {
	for _, b := range kvBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			_, err := b.store(t, "p").Get(context.Background(), KeyActivePrompt)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestKVStore_SetGetOverwriteRemove(t *testing.T) {
	for _, b := range kvBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			kv := b.store(t, "p")

			require.NoError(t, kv.Set(ctx, KeyActivePrompt, "first"))
			require.NoError(t, kv.Set(ctx, KeyActivePrompt, "second"))

			got, err := kv.Get(ctx, KeyActivePrompt)
			require.NoError(t, err)
			assert.Equal(t, "second", got)

			require.NoError(t, kv.Remove(ctx, KeyActivePrompt))
			_, err = kv.Get(ctx, KeyActivePrompt)
			assert.ErrorIs(t, err, ErrNotFound)

			// Removing a missing key is not an error.
			require.NoError(t, kv.Remove(ctx, KeyActivePrompt))
		})
	}
}

func TestKVStore_ProfilesAreIsolated(t *testing.T) {
	for _, b := range kvBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, b.store(t, "alice").Set(ctx, KeyActivePrompt, "a"))

			_, err := b.store(t, "bob").Get(ctx, KeyActivePrompt)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestKVTxRunner_CommitsAllWrites(t *testing.T) {
	for _, b := range kvBackends(t) {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			err := b.tx(t, "p").WithinTx(ctx, func(ctx context.Context, kv KVStore) error {
				if err := kv.Set(ctx, KeyPromptVersions, `[]`); err != nil {
					return err
				}
				return kv.Set(ctx, KeyActivePrompt, "x")
			})
			require.NoError(t, err)

			kv := b.store(t, "p")
			v, err := kv.Get(ctx, KeyPromptVersions)
			require.NoError(t, err)
			assert.Equal(t, "[]", v)
			v, err = kv.Get(ctx, KeyActivePrompt)
			require.NoError(t, err)
			assert.Equal(t, "x", v)
		})
	}
}

func TestSQLiteKVTxRunner_RollsBackOnError(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	runner := NewSQLiteKVTxRunner(testutil.NewTestUoW(database), "")

	err := runner.WithinTx(ctx, func(ctx context.Context, kv KVStore) error {
		if err := kv.Set(ctx, KeyPromptVersions, `[]`); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	_, err = NewSQLiteKVRepo(database, DefaultProfile).Get(ctx, KeyPromptVersions)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteKVRepo_BlankProfileUsesDefault(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteKVRepo(database, "  ").Set(ctx, KeyActivePrompt, "x"))

	got, err := NewSQLiteKVRepo(database, DefaultProfile).Get(ctx, KeyActivePrompt)
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
