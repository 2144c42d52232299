// Package http provides http transport for the CRM session and pickers
package http

import (
	stdhttp "net/http"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/modkit/httpkit"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Register mounts the CRM directory endpoints
func Register(r httpkit.Router, p importer.DirectoryPort) {
	h := &handlers{dir: p}
	httpkit.Get(r, "/session", h.session)
	httpkit.Get(r, "/workspaces", h.workspaces)
	httpkit.Get(r, "/segments", h.segments)
}

type handlers struct{ dir importer.DirectoryPort }

// SegmentsResponse wraps the segment picker list
type SegmentsResponse struct {
	Segments []crm.SegmentSummary `json:"segments"`
}

// WorkspacesResponse wraps the workspace picker list
type WorkspacesResponse struct {
	Workspaces []crm.Workspace `json:"workspaces"`
}

// swagger:route GET /crm/session CRM crmSession
// @Summary Verify the stored CRM cookies
// @Tags CRM
// @Produce json
// @Success 200 {object} crm.Session ok
// @Router /crm/session [get]
func (h *handlers) session(r *stdhttp.Request) (any, error) {
	return h.dir.Session(r.Context())
}

// swagger:route GET /crm/workspaces CRM crmWorkspaces
// @Summary Workspaces of the signed in CRM user
// @Tags CRM
// @Produce json
// @Success 200 {object} WorkspacesResponse ok
// @Router /crm/workspaces [get]
func (h *handlers) workspaces(r *stdhttp.Request) (any, error) {
	ws, err := h.dir.Workspaces(r.Context())
	if err != nil {
		return nil, err
	}
	return WorkspacesResponse{Workspaces: ws}, nil
}

// swagger:route GET /crm/segments CRM crmSegments
// @Summary Segments of an account, the stored one by default
// @Tags CRM
// @Produce json
// @Param accountId query string false "account id"
// @Success 200 {object} SegmentsResponse ok
// @Router /crm/segments [get]
func (h *handlers) segments(r *stdhttp.Request) (any, error) {
	ss, err := h.dir.Segments(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		return nil, err
	}
	return SegmentsResponse{Segments: ss}, nil
}
