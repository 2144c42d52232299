// Package module wires the imports api using modkit
package module

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	importshttp "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/imports/http"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Ports are the importer ports this module consumes
type Ports struct {
	Import importer.ImportPort
	Quota  importer.QuotaPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	ports Ports
}

// New constructs the imports module; pass the importer ports with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("imports")}, opts...)...)
	p, ok := b.Ports.(Ports)
	if !ok || p.Import == nil || p.Quota == nil {
		panic("imports: module needs Ports with Import and Quota")
	}

	m := &Module{deps: deps, ports: p}
	external := b.Register
	b.Register = func(r httpkit.Router) {
		importshttp.Register(r, importshttp.Deps{Import: p.Import, Quota: p.Quota})
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
func (m *Module) Ports() any { return m.ports }
