package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	got := compact("SELECT value\n\t FROM kv\r\n  WHERE key = $1 ")
	if got != "SELECT value FROM kv WHERE key = $1" {
		t.Fatalf("compact=%q", got)
	}
}

func TestTracer_LogsQueries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)
	tr := Tracer(root)

	ctx := logger.WithRun(context.Background(), "run-1")
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(ctx, QueryEvent{SQL: "SELECT 2", Err: errors.New("boom")})

	out := buf.String()
	testkit.MustContain(t, out, `"sql":"SELECT 1"`)
	testkit.MustContain(t, out, `"elapsed_ms":1.5`)
	testkit.MustContain(t, out, `"run_id":"run-1"`)
	testkit.MustContain(t, out, `"level":"warn"`)
	testkit.MustContain(t, out, `"error":"boom"`)
}

func TestOpen_BadURL(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "::not a url::"}, nil, nil); err == nil {
		t.Fatal("expected parse error")
	}
}
