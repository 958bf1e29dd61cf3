package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisKVRepo implements KVStore on Redis strings under "pursuit:<profile>:".
type RedisKVRepo struct {
	rdb    goredis.Cmdable
	prefix string
}

// NewRedisKVRepo wraps an existing client or pipeline.
func NewRedisKVRepo(rdb goredis.Cmdable, profile string) *RedisKVRepo {
	return &RedisKVRepo{rdb: rdb, prefix: "pursuit:" + normalizeProfile(profile) + ":"}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *RedisKVRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("kv %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading kv %q: %w", key, err)
	}
	return v, nil
}

func (r *RedisKVRepo) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing kv %q: %w", key, err)
	}
	return nil
}

func (r *RedisKVRepo) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("removing kv %q: %w", key, err)
	}
	return nil
}

// RedisKVTxRunner buffers writes in a MULTI/EXEC pipeline.
// Reads inside fn see the committed state, not the buffered writes.
type RedisKVTxRunner struct {
	rdb     *goredis.Client
	profile string
}

func NewRedisKVTxRunner(rdb *goredis.Client, profile string) *RedisKVTxRunner {
	return &RedisKVTxRunner{rdb: rdb, profile: profile}
}

func (r *RedisKVTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, kv KVStore) error) error {
	reader := NewRedisKVRepo(r.rdb, r.profile)
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		return fn(ctx, &pipelinedKV{read: reader, write: NewRedisKVRepo(pipe, r.profile)})
	})
	if err != nil {
		return fmt.Errorf("redis transaction: %w", err)
	}
	return nil
}

// pipelinedKV reads from the live client and queues writes on the pipeline.
type pipelinedKV struct {
	read  *RedisKVRepo
	write *RedisKVRepo
}

func (p *pipelinedKV) Get(ctx context.Context, key string) (string, error) {
	return p.read.Get(ctx, key)
}

func (p *pipelinedKV) Set(ctx context.Context, key, value string) error {
	return p.write.Set(ctx, key, value)
}

func (p *pipelinedKV) Remove(ctx context.Context, key string) error {
	return p.write.Remove(ctx, key)
}
