// @title         Sales Navigator import API
// @version       0.1.0
// @description   Imports Sales Navigator searches and lists into Highperformr segments

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/repokit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/config"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	phttp "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/api"
	importermod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/module"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	imp := importermod.FromConfig(root)

	// open only the backend the kv driver needs
	st, err := store.Open(ctx, importermod.StoreConfig(root, imp.Driver, api.ServiceName), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	opt := api.FromConfig(apiCfg)
	opt.Deps = modkit.DepsFromStore(*l, root, st)
	opt.Importer = imp
	if err := api.Mount(ctx, srv.Router(), opt); err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
