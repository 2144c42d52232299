// Package service runs Sales Navigator imports into the CRM
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Config tunes a Service; zero fields take the defaults
type Config struct {
	Fetch          FetcherConfig
	ProgressBuffer int
	// FlushTimeout bounds how long a stalled listener can hold a finished run
	FlushTimeout   time.Duration

	Now      func() time.Time
	NewRunID func() string
}

// Deps are the collaborators of a Service
type Deps struct {
	Search      domain.SearchAPI
	CRM         domain.CRMWriter
	Limiter     domain.Admitter
	Ledger      domain.Ledger
	Credentials domain.CredentialStore
	Transformer salesnav.Transformer
}

// Service implements domain.ImportPort
type Service struct {
	deps  Deps
	fetch *Fetcher
	cfg   Config
}

var _ domain.ImportPort = (*Service)(nil)

// New builds a Service; the limiter in deps is shared by every run of this Service
func New(deps Deps, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewRunID == nil {
		cfg.NewRunID = uuid.NewString
	}
	return &Service{
		deps:  deps,
		fetch: NewFetcher(deps.Search, deps.Limiter, deps.Transformer, cfg.Fetch),
		cfg:   cfg,
	}
}

// Run executes one import and returns its terminal result
// queued events reach emit before Run returns unless the listener stalls past FlushTimeout
func (s *Service) Run(ctx context.Context, req domain.Request, emit func(domain.Event)) domain.Result {
	runID := s.cfg.NewRunID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx).With().Str("component", "importer").Logger()

	em := newEmitter(s.cfg.ProgressBuffer, s.cfg.FlushTimeout, emit, log)
	defer em.Close()

	r := &run{s: s, em: em, log: log, res: domain.Result{RunID: runID}}
	r.exec(ctx, req)
	return r.res
}

// run is the state of one Run call
type run struct {
	s   *Service
	em  *emitter
	log logger.Logger
	res domain.Result
}

func (r *run) exec(ctx context.Context, req domain.Request) {
	start := r.s.cfg.Now()

	creds, segmentID, kind, err := r.prepare(ctx, req)
	if err != nil {
		r.fail(err)
		return
	}
	r.res.Kind = kind
	r.log.Info().Str("kind", string(kind)).Str("segment_id", string(segmentID)).Msg("import started")

	r.em.Progress(20, "Initializing data collection steps...")
	recs, err := r.s.fetch.Fetch(ctx, req.SearchURL, kind, creds.LinkedInCookies, r.em.Progress)
	if err != nil {
		r.fail(err)
		return
	}
	r.res.Fetched = len(recs)
	if len(recs) == 0 {
		r.fail(perr.EmptyResultf("No data found to import"))
		return
	}

	chk := r.s.deps.Ledger.Check(ctx, len(recs))
	if !chk.CanImport {
		msg := fmt.Sprintf("Daily contact limit of %d reached. Try again in %s.", chk.Limit, chk.TimeUntilReset)
		r.res.Outcome = domain.OutcomeLimitExceeded
		r.res.Error = msg
		r.res.Quota = &chk
		r.res.Err = perr.QuotaExceededf("%s", msg)
		r.log.Warn().Int("records", len(recs)).Int("current_total", chk.CurrentTotal).Msg("import blocked by quota")
		r.em.Emit(domain.Event{
			Type:             domain.EventLimitExceeded,
			Error:            msg,
			TimeUntilReset:   chk.TimeUntilReset,
			TimeUntilResetMs: chk.TimeUntilResetMs,
		})
		return
	}

	sourceID, err := r.write(ctx, creds, segmentID, kind, recs)
	if err != nil {
		r.fail(remoteErr(err))
		return
	}

	r.s.deps.Ledger.Record(ctx, len(recs))

	msg := fmt.Sprintf("Successfully imported %d records", len(recs))
	r.res.Outcome = domain.OutcomeComplete
	r.res.Imported = len(recs)
	r.res.SourceID = string(sourceID)
	r.res.Message = msg
	r.log.Info().
		Int("records", len(recs)).
		Str("source_id", string(sourceID)).
		Dur("took", r.s.cfg.Now().Sub(start)).
		Msg("import complete")
	r.em.Emit(domain.Event{Type: domain.EventComplete, Message: msg})
}

// prepare resolves credentials, kind and segment before any network call
func (r *run) prepare(ctx context.Context, req domain.Request) (domain.Credentials, crm.ID, salesnav.Kind, error) {
	if strings.TrimSpace(req.SearchURL) == "" {
		return domain.Credentials{}, "", "", perr.InvalidArgf("search url is required")
	}
	kind := req.Kind
	if kind == "" {
		k, ok := salesnav.DetectKind(req.SearchURL)
		if !ok {
			return domain.Credentials{}, "", "", perr.InvalidArgf("not a Sales Navigator search or list page")
		}
		kind = k
	}

	creds, err := r.s.deps.Credentials.Load(ctx)
	if err != nil {
		return domain.Credentials{}, "", "", err
	}
	if creds.LinkedInCookies == "" {
		return domain.Credentials{}, "", "", perr.Unauthorizedf("LinkedIn cookies are not set. Please log into LinkedIn.")
	}
	if creds.EffectiveAccountID() == "" {
		return domain.Credentials{}, "", "", perr.InvalidArgf("Account ID is required")
	}

	segmentID := req.SegmentID
	if segmentID == "" {
		segmentID = creds.SegmentID
	}
	if segmentID == "" {
		return domain.Credentials{}, "", "", perr.InvalidArgf("Segment ID is required")
	}
	return creds, crm.ID(segmentID), kind, nil
}

// write runs create source, add contacts and the segment merge in that order
func (r *run) write(
	ctx context.Context,
	creds domain.Credentials,
	segmentID crm.ID,
	kind salesnav.Kind,
	recs []salesnav.Record,
) (crm.ID, error) {
	cookies, account := creds.CRMCookies, creds.EffectiveAccountID()
	w := r.s.deps.CRM

	if kind == salesnav.KindOrganization {
		r.em.Progress(60, "Adding LinkedIn Company from Sales Navigator as audience to segment...")
	} else {
		r.em.Progress(60, "Processing data...")
	}

	r.em.Progress(80, "Creating source...")
	sourceID, err := w.CreateSource(ctx, cookies, account, crm.SourceSpec{
		Text:         SourceText(r.s.cfg.Now(), kind),
		FieldMapping: fieldMapping(kind),
	})
	if err != nil {
		return "", err
	}
	r.log.Debug().Str("source_id", string(sourceID)).Msg("source created")

	r.em.Progress(90, "Adding contacts to source...")
	if err := w.AddContacts(ctx, cookies, account, sourceID, recs); err != nil {
		return "", err
	}

	r.em.Progress(95, "Updating segment configuration...")
	if err := r.mergeSegment(ctx, cookies, account, segmentID, sourceID); err != nil {
		return "", err
	}

	r.em.Progress(100, "Complete!")
	return sourceID, nil
}

func (r *run) mergeSegment(ctx context.Context, cookies, account string, segmentID, sourceID crm.ID) error {
	w := r.s.deps.CRM
	seg, err := w.GetSegment(ctx, cookies, account, segmentID)
	if err != nil {
		return err
	}
	values := MergeIDs(seg.ConditionValues, sourceID)
	sources := MergeIDs(seg.Sources, sourceID)
	if err := w.PatchSegment(ctx, cookies, account, segmentID, values, sources); err != nil {
		return err
	}

	after, err := w.GetSegment(ctx, cookies, account, segmentID)
	if err != nil {
		r.log.Warn().Err(err).Str("segment_id", string(segmentID)).Msg("segment verification read failed")
		return nil
	}
	r.log.Debug().
		Int("sources", len(after.Sources)).
		Int("condition_values", len(after.ConditionValues)).
		Msg("segment verified")
	return nil
}

func (r *run) fail(err error) {
	msg := Message(err)
	r.res.Outcome = domain.OutcomeError
	r.res.Error = msg
	r.res.Err = err
	r.log.Error().Err(err).Str("code", perr.CodeOf(err).String()).Msg("import failed")
	r.em.Emit(domain.Event{Type: domain.EventError, Error: msg})
}

// SourceText names a source like SN-2026-01-02T03-04-05-000Z - people search
func SourceText(now time.Time, kind salesnav.Kind) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "SN-" + ts + " - " + kind.Label() + " search"
}

// Message is the user facing text of err
func Message(err error) string {
	if e, ok := perr.As(err); ok && e.Message() != "" {
		return e.Message()
	}
	return err.Error()
}

const remotePrefix = "Failed to send data to Highperformr.ai: "

func remoteErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return perr.Wrap(err, perr.ErrorCodeRemoteWrite, remotePrefix+Message(err))
}

func fieldMapping(kind salesnav.Kind) []crm.FieldMapping {
	src := kind.FieldMappings()
	out := make([]crm.FieldMapping, len(src))
	for i, m := range src {
		out[i] = crm.FieldMapping{SourceFieldName: m.SourceFieldName, HPFieldName: m.HPFieldName}
	}
	return out
}
