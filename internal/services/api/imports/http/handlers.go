// Package http provides http transport for imports and the quota
package http

import (
	stdhttp "net/http"
	"strconv"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/imports/domain"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Import importer.ImportPort
	Quota  importer.QuotaPort
}

type handlers struct{ deps Deps }

// Register mounts the import and quota endpoints
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}
	httpkit.PostStream[domain.ImportInput](r, "/imports", h.stream)
	httpkit.PostJSON[domain.ImportInput](r, "/imports/run", h.run)
	httpkit.Get(r, "/quota", h.quota)
}

// swagger:route POST /imports Imports importsStream
// @Summary Run an import and stream its progress as server-sent events
// @Tags Imports
// @Accept json
// @Produce text/event-stream
// @Param payload body domain.ImportInput true "Import"
// @Success 200 {string} string "PROGRESS_UPDATE, COMPLETE, ERROR or LIMIT_EXCEEDED events"
// @Router /imports [post]
func (h *handlers) stream(r *stdhttp.Request, in domain.ImportInput, es *httpkit.EventStream) {
	log := logger.C(r.Context())

	send := func(seq int, ev importer.Event) {
		if err := es.Send(strconv.Itoa(seq), string(ev.Type), ev); err != nil {
			log.Debug().Err(err).Str("event", string(ev.Type)).Msg("event stream write failed")
		}
	}

	req, err := in.Request()
	if err != nil {
		send(1, importer.Event{Type: importer.EventError, Error: perr.WireFrom(err).Message})
		return
	}
	if err := es.Comment("import started"); err != nil {
		return
	}

	seq := 0
	res := h.deps.Import.Run(r.Context(), req, func(ev importer.Event) {
		seq++
		send(seq, ev)
	})
	log.Debug().Str("outcome", string(res.Outcome)).Int("events", seq).Msg("event stream closed")
}

// swagger:route POST /imports/run Imports importsRun
// @Summary Run an import and wait for its result
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body domain.ImportInput true "Import"
// @Success 200 {object} importer.Result "complete"
// @Failure 429 {object} importer.Result "daily limit reached"
// @Router /imports/run [post]
func (h *handlers) run(r *stdhttp.Request, in domain.ImportInput) (any, error) {
	req, err := in.Request()
	if err != nil {
		return nil, err
	}
	res := h.deps.Import.Run(r.Context(), req, func(importer.Event) {})
	if res.Err == nil {
		return res, nil
	}
	// non complete runs keep the result as data so the caller sees the quota
	return httpkit.Response{Status: perr.HTTPStatus(res.Err), Body: res}, nil
}

// swagger:route GET /quota Imports quotaCheck
// @Summary Check whether count records fit in the rolling daily budget
// @Tags Imports
// @Produce json
// @Param count query int false "records to import"
// @Success 200 {object} quota.CheckResult ok
// @Router /quota [get]
func (h *handlers) quota(r *stdhttp.Request) (any, error) {
	n := 0
	if s := r.URL.Query().Get("count"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, perr.WithField(perr.InvalidArgf("count must be a non negative integer"), "count")
		}
		n = v
	}
	return h.deps.Quota.Check(r.Context(), n), nil
}
