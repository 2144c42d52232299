package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store/sqlite"
)

var sqliteMigrations = []sqlite.Migration{
	{
		`CREATE TABLE IF NOT EXISTS kv_entries (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

type sqliteKV struct{ db *sql.DB }

// NewSQLite migrates db and returns a Storage over it
func NewSQLite(ctx context.Context, db *sql.DB) (Storage, error) {
	if err := sqlite.Migrate(ctx, db, "importer", sqliteMigrations); err != nil {
		return nil, perr.FromSQLite(err, "migrate importer kv")
	}
	return &sqliteKV{db: db}, nil
}

// Get implements Storage
func (s *sqliteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.FromSQLite(err, "kv get %s", key)
	}
	return v, true, nil
}

// Set implements Storage
func (s *sqliteKV) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return retryWrite(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
		return perr.FromSQLite(err, "kv set %s", key)
	})
}

// Delete implements Storage
func (s *sqliteKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	q := `DELETE FROM kv_entries WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	return retryWrite(ctx, func() error {
		_, err := s.db.ExecContext(ctx, q, args...)
		return perr.FromSQLite(err, "kv delete")
	})
}
