package modkit

import (
	"net/http"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
)

// Built is the resolved option set a module keeps after construction
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

// Build applies options and fills defaults
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount registers the module routes on r, under Prefix with Mw when set
func (b Built) Mount(r httpkit.Router) {
	if b.Prefix == "" && len(b.Mw) == 0 {
		b.Register(r)
		return
	}
	if b.Prefix == "" {
		r.Group(func(g httpkit.Router) {
			g.Use(b.Mw...)
			b.Register(g)
		})
		return
	}
	httpkit.MountUnder(r, b.Prefix, b.Mw, b.Register)
}
