// Package sqlite opens the embedded modernc sqlite database and runs schema migrations
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens dsn with WAL, foreign keys and a 5s busy timeout
// a single connection keeps writers serialized
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return db, nil
}

// Migration is a list of statements applied in one transaction
type Migration []string

// Migrate applies migrations not yet recorded under scope in schema_migrations
// versions are 1-based positions in the slice, so entries must only be appended
func Migrate(ctx context.Context, db *sql.DB, scope string, migrations []Migration) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		scope TEXT NOT NULL,
		version INTEGER NOT NULL,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (scope, version)
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		if err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE scope = ? AND version = ?", scope, version,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s/%d: %w", scope, version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s/%d: %w", scope, version, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %s/%d: %w", scope, version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (scope, version) VALUES (?, ?)", scope, version,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s/%d: %w", scope, version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s/%d: %w", scope, version, err)
		}
	}
	return nil
}
