// Package api provides the HTTP API for the importer
package api

import (
	"context"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/config"
	phttp "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/middleware"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/module"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/swaggerkit"

	credsmod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/credentials/module"
	crmmod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/crm/module"
	importsmod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/imports/module"
	metamod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/meta/module"

	// service module that owns the importer ports
	importermod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/module"
)

// ServiceName names the api binary in meta payloads
const ServiceName = "salesnav-api"

// Options are the API options
type Options struct {
	Deps           modkit.Deps
	Importer       importermod.Options
	Overrides      importermod.Overrides
	EnableSwagger  bool
	EnableProfiler bool

	// Tokens are client:token pairs; empty leaves the api open
	Tokens      []string
	CORSOrigins []string
	SlowRequest time.Duration
	RateLimit   middleware.RateLimitOptions

	// MaxImports caps concurrent import requests; 0 disables the cap
	MaxImports int
	// RequestTimeout bounds the non streaming crm and credentials calls
	RequestTimeout time.Duration
}

// FromConfig reads CORE_API_* settings; Deps and the importer options are set by the caller
func FromConfig(cfg config.Conf) Options {
	return Options{
		EnableSwagger:  cfg.MayBool("SWAGGER", true),
		EnableProfiler: cfg.MayBool("PROFILER", false),
		Tokens:         cfg.MayCSV("TOKENS", nil),
		CORSOrigins:    cfg.MayCSV("CORS_ORIGINS", nil),
		SlowRequest:    cfg.MayDuration("SLOW_REQUEST", 2*time.Second),
		RateLimit: middleware.RateLimitOptions{
			Requests: cfg.MayInt("RATE_LIMIT", 120),
			Window:   cfg.MayDuration("RATE_WINDOW", time.Minute),
			Burst:    cfg.MayInt("RATE_BURST", 0),
		},
		MaxImports:     cfg.MayInt("MAX_IMPORTS", 4),
		RequestTimeout: cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
	}
}

// Mount builds the importer and mounts the api onto r
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	deps := opt.Deps

	// the service module first, the api modules consume its ports
	importer, err := importermod.New(ctx, deps, opt.Importer, opt.Overrides)
	if err != nil {
		return err
	}
	ports := module.MustPortsOf[importermod.Ports](importer)

	open := []module.Module{
		metamod.New(deps, ServiceName),
	}
	importOpts := []modkit.Option{modkit.WithPorts(importsmod.Ports{Import: ports.Import, Quota: ports.Quota})}
	if opt.MaxImports > 0 {
		importOpts = append(importOpts, modkit.WithMiddlewares(middleware.Throttle(opt.MaxImports)))
	}
	var bounded []modkit.Option
	if opt.RequestTimeout > 0 {
		bounded = append(bounded, modkit.WithMiddlewares(middleware.Timeout(opt.RequestTimeout)))
	}
	protected := []module.Module{
		importsmod.New(deps, importOpts...),
		credsmod.New(deps, append([]modkit.Option{modkit.WithPorts(ports.Credentials)}, bounded...)...),
		crmmod.New(deps, append([]modkit.Option{modkit.WithPorts(ports.Directory)}, bounded...)...),
	}

	auth := httpkit.NewTokenPort(opt.Tokens)
	limiter := middleware.NewRateLimiter(opt.RateLimit)
	if limiter != nil {
		go sweep(ctx, limiter, opt.RateLimit.Window)
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		CORSOrigins: opt.CORSOrigins,
		SlowRequest: opt.SlowRequest,
		SkipLog:     []string{"/api/v1/meta/health"},
	})

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range open {
			m.MountRoutes(api)
		}
		httpkit.Protected(api, authPort(auth), limiter, func(pr httpkit.Router) {
			for _, m := range protected {
				m.MountRoutes(pr)
			}
		})
	})

	log := deps.Log
	log.Info().
		Bool("auth", auth != nil).
		Bool("rate_limit", limiter != nil).
		Int("max_imports", opt.MaxImports).
		Str("kv", opt.Importer.Driver).
		Msg("api mounted")
	return nil
}

// sweep drops idle client buckets until ctx is done
func sweep(ctx context.Context, l *middleware.RateLimiter, window time.Duration) {
	if window <= 0 {
		window = time.Minute
	}
	t := time.NewTicker(window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep(2 * window)
		}
	}
}

// authPort keeps a nil *TokenPort from turning into a non nil interface
func authPort(p *httpkit.TokenPort) middleware.AuthPort {
	if p == nil {
		return nil
	}
	return p
}
