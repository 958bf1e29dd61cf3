package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/pursuit/internal/db"
)

// SQLiteKVRepo implements KVStore on the kv_entries table.
type SQLiteKVRepo struct {
	db      db.DBTX
	profile string
}

// NewSQLiteKVRepo creates a KVStore for one profile over a *sql.DB or *sql.Tx.
func NewSQLiteKVRepo(conn db.DBTX, profile string) *SQLiteKVRepo {
	return &SQLiteKVRepo{db: conn, profile: normalizeProfile(profile)}
}

func (r *SQLiteKVRepo) Get(ctx context.Context, key string) (string, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE profile = ? AND key = ?`, r.profile, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("kv %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("reading kv %q: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteKVRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_entries (profile, key, value) VALUES (?, ?, ?)
		ON CONFLICT(profile, key) DO UPDATE SET value = excluded.value`,
		r.profile, key, value)
	if err != nil {
		return fmt.Errorf("writing kv %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteKVRepo) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE profile = ? AND key = ?`, r.profile, key)
	if err != nil {
		return fmt.Errorf("removing kv %q: %w", key, err)
	}
	return nil
}

// SQLiteKVTxRunner runs KV writes inside one SQLite transaction.
type SQLiteKVTxRunner struct {
	uow     db.UnitOfWork
	profile string
}

// NewSQLiteKVTxRunner creates a KVTxRunner over the given UnitOfWork.
func NewSQLiteKVTxRunner(uow db.UnitOfWork, profile string) *SQLiteKVTxRunner {
	return &SQLiteKVTxRunner{uow: uow, profile: profile}
}

func (r *SQLiteKVTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, kv KVStore) error) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewSQLiteKVRepo(tx, r.profile))
	})
}
