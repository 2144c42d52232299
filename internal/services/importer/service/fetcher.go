package service

import (
	"context"
	"errors"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/ratelimit"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Fetch pacing defaults
const (
	DefaultPageDelay  = 2 * time.Second
	DefaultRetryDelay = 5 * time.Second

	statusFetching = "Fetching Sales Navigator data..."
)

// FetcherConfig tunes pacing; zero fields take the defaults
type FetcherConfig struct {
	PageDelay  time.Duration
	RetryDelay time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
}

// Fetcher walks search pages until the data or the per kind caps run out
type Fetcher struct {
	api   domain.SearchAPI
	admit domain.Admitter
	tr    salesnav.Transformer
	cfg   FetcherConfig
}

// NewFetcher builds a Fetcher
func NewFetcher(api domain.SearchAPI, admit domain.Admitter, tr salesnav.Transformer, cfg FetcherConfig) *Fetcher {
	if cfg.PageDelay <= 0 {
		cfg.PageDelay = DefaultPageDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = ratelimit.SleepCtx
	}
	return &Fetcher{api: api, admit: admit, tr: tr, cfg: cfg}
}

// Fetch returns the records of searchURL, at most kind.Limits().MaxRecords of them
// url building, auth failures and cancellation are returned as errors; any other failed page ends the walk
func (f *Fetcher) Fetch(
	ctx context.Context,
	searchURL string,
	kind salesnav.Kind,
	cookies string,
	progress func(pct float64, status string),
) ([]salesnav.Record, error) {
	log := logger.C(ctx).With().Str("kind", string(kind)).Logger()
	limits := kind.Limits()
	var out []salesnav.Record

	page := 1
	for page <= limits.MaxPages {
		if err := f.admit.Admit(ctx); err != nil {
			return nil, err
		}
		u, err := f.api.PageURL(searchURL, kind, page)
		if err != nil {
			return nil, err
		}

		raw, err := f.api.FetchPage(ctx, u, cookies)
		if err != nil {
			switch {
			case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return nil, err
			case perr.IsCode(err, perr.ErrorCodeUnauthorized), perr.IsCode(err, perr.ErrorCodeForbidden):
				return nil, err
			case perr.IsCode(err, perr.ErrorCodeTooManyRequests):
				log.Warn().Int("page", page).Dur("retry_in", f.cfg.RetryDelay).Msg("search rate limited, retrying page")
				if err := f.cfg.Sleep(ctx, f.cfg.RetryDelay); err != nil {
					return nil, err
				}
				continue
			default:
				log.Info().Err(err).Int("page", page).Int("records", len(out)).Msg("search page failed, stopping")
			}
			break
		}

		recs, total := f.tr.Elements(kind, raw)
		out = append(out, recs...)
		if progress != nil {
			progress(min(40+float64(page)*1.5, 60), statusFetching)
		}
		log.Debug().
			Int("page", page).
			Int("batch", len(recs)).
			Int("records", len(out)).
			Int("server_total", total).
			Msg("search page fetched")

		if len(recs) != salesnav.PageSize || len(out) >= limits.MaxRecords {
			break
		}
		page++
		if page > limits.MaxPages {
			break
		}
		if err := f.cfg.Sleep(ctx, f.cfg.PageDelay); err != nil {
			return nil, err
		}
	}

	if len(out) > limits.MaxRecords {
		out = out[:limits.MaxRecords]
	}
	return out, nil
}
