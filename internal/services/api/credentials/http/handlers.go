// Package http provides http transport for stored credentials
package http

import (
	stdhttp "net/http"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/api/credentials/domain"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Register mounts the credentials endpoints
func Register(r httpkit.Router, p importer.CredentialsPort) {
	h := &handlers{creds: p}
	httpkit.Get(r, "/", h.status)
	httpkit.PutJSON[domain.CredentialsInput](r, "/", h.update)
	httpkit.Delete(r, "/", h.logout)
}

type handlers struct{ creds importer.CredentialsPort }

// swagger:route GET /credentials Credentials credentialsStatus
// @Summary Which credentials are stored
// @Tags Credentials
// @Produce json
// @Success 200 {object} domain.CredentialsStatus ok
// @Router /credentials [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	c, err := h.creds.Load(r.Context())
	if err != nil {
		return nil, err
	}
	return domain.StatusOf(c), nil
}

// swagger:route PUT /credentials Credentials credentialsUpdate
// @Summary Store cookies, account and segment
// @Tags Credentials
// @Accept json
// @Produce json
// @Param payload body domain.CredentialsInput true "Credentials"
// @Success 200 {object} domain.CredentialsStatus ok
// @Router /credentials [put]
func (h *handlers) update(r *stdhttp.Request, in domain.CredentialsInput) (any, error) {
	c, err := h.creds.Update(r.Context(), in.Patch())
	if err != nil {
		return nil, err
	}
	return domain.StatusOf(c), nil
}

// swagger:route DELETE /credentials Credentials credentialsLogout
// @Summary Forget stored credentials; the import ledger is kept
// @Tags Credentials
// @Success 204
// @Router /credentials [delete]
func (h *handlers) logout(r *stdhttp.Request) (any, error) {
	if err := h.creds.Clear(r.Context()); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
