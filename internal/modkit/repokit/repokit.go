// Package repokit binds repositories to the store and runs them in transactions
package repokit

import (
	"context"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"
)

type (
	// Queryer is the read and write surface a repo is bound to, the pool or a tx
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can open transactions
	TxRunner = store.TxRunner

	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row
)

// Binder binds a repo to a Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil Queryer, then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
