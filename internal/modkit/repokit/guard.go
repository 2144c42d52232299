package repokit

import (
	"context"
	"fmt"
	"time"
)

// Guarder is anything that can verify its backends, usually *store.Store
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard runs Guard with a 5s default deadline and panics on error
func MustGuard(ctx context.Context, g Guarder) {
	if g == nil {
		panic("repokit: nil guarder")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
