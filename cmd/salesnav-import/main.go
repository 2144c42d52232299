package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/module"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/config"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/store"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
	importermod "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/module"
)

func main() { os.Exit(run()) }

// run returns the exit code: 0 complete, 1 error, 3 daily limit reached
func run() int {
	var (
		fURL       = flag.String("url", "", "Sales Navigator search or list page url")
		fKind      = flag.String("kind", "", "person | organization; detected from -url when empty")
		fSegment   = flag.String("segment", "", "segment id; defaults to the stored one")
		fLinkedIn  = flag.String("linkedin-cookies", os.Getenv("SALESNAV_COOKIES"), "LinkedIn cookie header, stored for later runs")
		fCRM       = flag.String("crm-cookies", os.Getenv("CRM_COOKIES"), "Highperformr cookie header, stored for later runs")
		fAccount   = flag.String("account", "", "Highperformr account id, stored for later runs")
		fWorkspace = flag.String("workspace", "", "Highperformr workspace id, stored for later runs")
		fQuota     = flag.Int("quota", -1, "only check whether N records fit in the daily budget")
		fLogout    = flag.Bool("logout", false, "forget stored credentials and exit")
		fQuiet     = flag.Bool("quiet", false, "do not print progress")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	logger.Init(logger.FromEnv())
	l := logger.Get()

	opts := importermod.FromConfig(root)
	st, err := store.Open(ctx, importermod.StoreConfig(root, opts.Driver, "salesnav-import"), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	m, err := importermod.New(ctx, modkit.DepsFromStore(*l, root, st), opts)
	if err != nil {
		l.Error().Err(err).Msg("importer module failed")
		return 1
	}
	ports := module.MustPortsOf[importermod.Ports](m)

	switch {
	case *fLogout:
		if err := ports.Credentials.Clear(ctx); err != nil {
			l.Error().Err(err).Msg("logout failed")
			return 1
		}
		return 0
	case *fQuota >= 0:
		printJSON(ports.Quota.Check(ctx, *fQuota))
		return 0
	}

	patch := domain.Credentials{
		LinkedInCookies: *fLinkedIn,
		CRMCookies:      *fCRM,
		AccountID:       *fAccount,
		WorkspaceID:     *fWorkspace,
	}
	if _, err := ports.Credentials.Update(ctx, patch); err != nil {
		l.Error().Err(err).Msg("storing credentials failed")
		return 1
	}

	req := domain.Request{SearchURL: *fURL, SegmentID: *fSegment}
	if *fKind != "" {
		k, ok := salesnav.ParseKind(*fKind)
		if !ok {
			l.Error().Str("kind", *fKind).Msg("unknown kind")
			return 1
		}
		req.Kind = k
	}

	res := ports.Import.Run(ctx, req, func(ev domain.Event) {
		if *fQuiet {
			return
		}
		switch ev.Type {
		case domain.EventProgress:
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", ev.Progress, ev.Status)
		case domain.EventComplete:
			fmt.Fprintln(os.Stderr, ev.Message)
		default:
			fmt.Fprintf(os.Stderr, "%s: %s\n", ev.Type, ev.Error)
		}
	})
	printJSON(res)

	switch res.Outcome {
	case domain.OutcomeComplete:
		return 0
	case domain.OutcomeLimitExceeded:
		return 3
	default:
		return 1
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
