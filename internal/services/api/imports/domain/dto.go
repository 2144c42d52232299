// Package domain holds the transport types of the imports api
package domain

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// ImportInput starts an import from a Sales Navigator search or list page
// swagger:model
type ImportInput struct {
	SearchURL string `json:"searchUrl"           validate:"required,salesnav_url" example:"https://www.linkedin.com/sales/search/people?savedSearchId=42"`
	Kind      string `json:"kind,omitempty"      validate:"omitempty,max=32"      example:"person"`
	SegmentID string `json:"segmentId,omitempty" validate:"omitempty,max=128"     example:"4711"`
}

// Request maps the input onto an importer request; an empty kind is detected later
func (in ImportInput) Request() (importer.Request, error) {
	req := importer.Request{SearchURL: in.SearchURL, SegmentID: in.SegmentID}
	if in.Kind == "" {
		return req, nil
	}
	k, ok := salesnav.ParseKind(in.Kind)
	if !ok {
		return importer.Request{}, perr.WithField(perr.InvalidArgf("unknown kind %q", in.Kind), "kind")
	}
	req.Kind = k
	return req, nil
}
