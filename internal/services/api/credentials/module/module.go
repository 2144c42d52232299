// Package module wires the credentials api using modkit
package module

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	credshttp "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/credentials/http"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	creds importer.CredentialsPort
}

// New constructs the credentials module; pass the importer.CredentialsPort with modkit.WithPorts
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("credentials"),
		modkit.WithPrefix("/credentials"),
	}, opts...)...)
	p, ok := b.Ports.(importer.CredentialsPort)
	if !ok {
		panic("credentials: module needs an importer.CredentialsPort")
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		credshttp.Register(r, p)
		external(r)
	}
	return &Module{built: b, creds: p}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.built.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.creds }
