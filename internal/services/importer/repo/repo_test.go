package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store/sqlite"
)

func exerciseKV(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, "a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "a", []byte("2")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "b", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "empty", nil); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, "a")
	if err != nil || !ok || string(v) != "2" {
		t.Fatalf("a=%q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := s.Get(ctx, "empty"); !ok {
		t.Fatal("an empty value is still present")
	}

	if err := s.Delete(ctx, "a", "b", "never"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if _, ok, _ := s.Get(ctx, k); ok {
			t.Fatalf("%s survived delete", k)
		}
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	exerciseKV(t, m)

	_ = m.Set(context.Background(), "k", []byte("v"))
	snap := m.Snapshot()
	snap["k"][0] = 'X'
	if v, _, _ := m.Get(context.Background(), "k"); string(v) != "v" {
		t.Fatalf("snapshot aliases storage: %q", v)
	}
}

func TestSQLite(t *testing.T) {
	t.Parallel()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLite(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	exerciseKV(t, s)

	// a second open reuses the migrated schema
	if _, err := NewSQLite(context.Background(), db); err != nil {
		t.Fatal(err)
	}
}
