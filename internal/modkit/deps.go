// Package modkit provides module wiring and core deps
package modkit

import (
	"database/sql"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/repokit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/config"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and SQL are nil when that backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	SQL *sql.DB
}

// DepsFromStore copies the open backends of st into Deps
func DepsFromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG = st.PG
		d.SQL = st.SQLite
	}
	return d
}
