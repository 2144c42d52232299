package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	migs := []Migration{
		{`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`},
		{`ALTER TABLE kv ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`},
	}
	for range 2 {
		if err := Migrate(ctx, db, "kv", migs); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE scope = 'kv'").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("recorded %d migrations want 2", n)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO kv (key, value, updated_at) VALUES ('a', 'b', 1)"); err != nil {
		t.Fatalf("insert after migrate: %v", err)
	}
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(filepath.Join(t.TempDir(), "bad.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, "bad", []Migration{{`CREATE TABLE t (id INTEGER)`, `NOT SQL`}})
	if err == nil {
		t.Fatal("expected migration error")
	}

	var n int
	_ = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 't'").Scan(&n)
	if n != 0 {
		t.Fatal("partial migration was not rolled back")
	}
}
