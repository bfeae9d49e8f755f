package storage

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/matthieukhl/storefront/internal/database"
)

// SQLKV stores keys in the MySQL storefront_kv table. The namespace column
// scopes keys, so Scoped is not needed on top of it.
// Requires the schema created by database.SetupSchema.
type SQLKV struct {
	db        *database.DB
	namespace string
	closed    atomic.Bool
}

func NewSQLKV(db *database.DB, namespace string) *SQLKV {
	return &SQLKV{db: db, namespace: namespace}
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT v FROM storefront_kv WHERE namespace = ? AND k = ?",
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storefront_kv (namespace, k, v)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			v = VALUES(v)
	`, s.namespace, key, value)
	return err
}

func (s *SQLKV) Remove(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM storefront_kv WHERE namespace = ? AND k = ?",
		s.namespace, key,
	)
	return err
}

// Close marks the store closed and closes the underlying pool.
func (s *SQLKV) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// HealthCheck pings the database.
func (s *SQLKV) HealthCheck(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.HealthCheck(ctx)
}

var _ KV = (*SQLKV)(nil)
