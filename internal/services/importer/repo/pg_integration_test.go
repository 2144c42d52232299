//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/quota"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/repokit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store/pg/pgtest"
)

func TestPG_Integration_KVAndLedger(t *testing.T) {
	dsn := pgtest.Start(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		AppName: "importer-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	}, store.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	require.NoError(t, EnsurePG(ctx, st.PG))
	require.NoError(t, EnsurePG(ctx, st.PG), "schema creation is repeatable")

	kv := repokit.MustBind(NewPG(), st.PG)
	exerciseKV(t, kv)

	clk := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := quota.New(kv, quota.Config{Now: func() time.Time { return clk }})
	l.Record(ctx, 1200)
	require.Equal(t, 1200, l.CurrentTotal(ctx))
	require.False(t, l.CanImport(ctx, 301))

	raw, ok, err := kv.Get(ctx, quota.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"timestamp":1767225600000,"contactCount":1200}]`, string(raw))

	require.NoError(t, repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
		return NewPG().Bind(q).Set(ctx, "in-tx", []byte("ok"))
	}))
	v, ok, err := kv.Get(ctx, "in-tx")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ok", string(v))
}
