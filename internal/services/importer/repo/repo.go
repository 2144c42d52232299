// Package repo provides the importer key value stores
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/repokit"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// Storage is the kv surface every backend implements
type Storage interface {
	domain.KV
}

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// EnsurePG creates the kv table when it is missing
func EnsurePG(ctx context.Context, q repokit.Queryer) error {
	_, err := q.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return perr.FromPostgres(err, "create kv_entries")
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.q.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.FromPostgresf(err, "kv get %s", key)
	}
	return v, true, nil
}

// Set implements Storage
func (s *pg) Set(ctx context.Context, key string, value []byte) error {
	return retryWrite(ctx, func() error {
		_, err := s.q.Exec(ctx, `INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
		return perr.FromPostgresf(err, "kv set %s", key)
	})
}

// Delete implements Storage
func (s *pg) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return retryWrite(ctx, func() error {
		_, err := s.q.Exec(ctx, `DELETE FROM kv_entries WHERE key = ANY($1)`, keys)
		return perr.FromPostgresf(err, "kv delete")
	})
}
