// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"

	metahttp "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built     modkit.Built
	startedAt time.Time
}

// New constructs a meta module; service names the binary in health and version payloads
func New(deps modkit.Deps, service string, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{startedAt: time.Now()}

	checks := []metahttp.Check{{Name: "pg"}, {Name: "sqlite"}}
	if p, ok := deps.PG.(metahttp.Pinger); ok && p != nil {
		checks[0].Pinger = p
	}
	if deps.SQL != nil {
		checks[1].Pinger = metahttp.PingFunc(deps.SQL.PingContext)
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		metahttp.Register(r, metahttp.Deps{
			ServiceName: service,
			StartedAt:   m.startedAt,
			Checks:      checks,
		})
		external(r)
	}
	m.built = b
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
