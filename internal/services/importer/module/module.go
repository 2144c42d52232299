// Package module wires the importer service, its adapters and its kv store
package module

import (
	"context"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/quota"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/ratelimit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/repokit"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/repo"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/service"
)

// Ports exposed by the importer module
type Ports struct {
	Import      domain.ImportPort
	Quota       domain.QuotaPort
	Credentials domain.CredentialsPort
	Directory   domain.DirectoryPort
}

// Module implements the importer service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// Overrides replace collaborators New would otherwise build from Options
type Overrides struct {
	KV     domain.KV
	Search domain.SearchAPI
	CRM    interface {
		domain.CRMWriter
		domain.CRMDirectory
	}
}

// New constructs the importer module
// one limiter and one ledger are shared by every run
func New(ctx context.Context, deps modkit.Deps, opts Options, ov ...Overrides) (*Module, error) {
	var o Overrides
	if len(ov) > 0 {
		o = ov[0]
	}

	kv := o.KV
	if kv == nil {
		var err error
		if kv, err = openKV(ctx, deps, opts.Driver); err != nil {
			return nil, err
		}
	}
	search := o.Search
	if search == nil {
		search = salesnav.NewClient(opts.SalesNav)
	}
	client := o.CRM
	if client == nil {
		client = crm.NewClient(opts.CRM)
	}

	log := deps.Log
	limiter := ratelimit.New(ratelimit.Config{
		MaxRequests: opts.RequestsPerWindow,
		Window:      opts.Window,
	})
	ledger := quota.New(kv, quota.Config{
		Max:    opts.QuotaMax,
		Window: opts.QuotaWindow,
		Log:    &log,
	})
	creds := service.NewCredentials(kv)

	svc := service.New(service.Deps{
		Search:      search,
		CRM:         client,
		Limiter:     limiter,
		Ledger:      ledger,
		Credentials: creds,
		Transformer: salesnav.Transformer{Log: &log},
	}, service.Config{
		Fetch: service.FetcherConfig{
			PageDelay:  opts.PageDelay,
			RetryDelay: opts.RetryDelay,
		},
		ProgressBuffer: opts.ProgressBuffer,
		FlushTimeout:   opts.FlushTimeout,
	})

	return &Module{
		deps: deps,
		ports: Ports{
			Import:      svc,
			Quota:       ledger,
			Credentials: creds,
			Directory:   service.NewDirectory(client, creds),
		},
	}, nil
}

func openKV(ctx context.Context, deps modkit.Deps, driver string) (domain.KV, error) {
	switch driver {
	case DriverSQLite:
		if deps.SQL == nil {
			return nil, perr.Unavailablef("kv driver sqlite needs an open sqlite store")
		}
		return repo.NewSQLite(ctx, deps.SQL)
	case DriverPG:
		if deps.PG == nil {
			return nil, perr.Unavailablef("kv driver pgsql needs an open postgres store")
		}
		if err := repokit.WithTx(ctx, deps.PG, func(q repokit.Queryer) error { return repo.EnsurePG(ctx, q) }); err != nil {
			return nil, err
		}
		return repokit.MustBind(repo.NewPG(), deps.PG), nil
	default:
		return repo.NewMemory(), nil
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "importer" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the api modules own the routes
func (m *Module) MountRoutes(r httpkit.Router) {}
