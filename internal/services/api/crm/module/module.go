// Package module wires the CRM directory api using modkit
package module

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	crmhttp "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/crm/http"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	dir   importer.DirectoryPort
}

// New constructs the crm module; pass the importer.DirectoryPort with modkit.WithPorts
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("crm"),
		modkit.WithPrefix("/crm"),
	}, opts...)...)
	p, ok := b.Ports.(importer.DirectoryPort)
	if !ok {
		panic("crm: module needs an importer.DirectoryPort")
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		crmhttp.Register(r, p)
		external(r)
	}
	return &Module{built: b, dir: p}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.dir }
