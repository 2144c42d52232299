package repo

import (
	"context"
	"time"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

const (
	writeAttempts = 3
	writeBackoff  = 50 * time.Millisecond
)

// waitFor is a seam for tests
var waitFor = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryWrite reruns fn while the backend reports a transient failure
// such as a busy sqlite file or a pg serialization conflict
func retryWrite(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !perr.Retryable(err) || attempt == writeAttempts {
			return err
		}
		if werr := waitFor(ctx, time.Duration(attempt)*writeBackoff); werr != nil {
			return err
		}
	}
}
