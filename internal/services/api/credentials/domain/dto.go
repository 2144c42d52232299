// Package domain holds the transport types of the credentials api
package domain

import (
	importer "github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// CredentialsInput overlays stored credentials; empty fields keep their value
// swagger:model
type CredentialsInput struct {
	LinkedInCookies string `json:"linkedinCookies,omitempty"     validate:"omitempty,max=65536"`
	CRMCookies      string `json:"highperformrCookies,omitempty" validate:"omitempty,max=65536"`
	AccountID       string `json:"accountId,omitempty"           validate:"omitempty,max=128" example:"acc-1"`
	WorkspaceID     string `json:"workspaceId,omitempty"         validate:"omitempty,max=128" example:"ws-1"`
	SegmentID       string `json:"segmentId,omitempty"           validate:"omitempty,max=128" example:"4711"`
}

// Patch converts the input to an importer credentials patch
func (in CredentialsInput) Patch() importer.Credentials {
	return importer.Credentials{
		LinkedInCookies: in.LinkedInCookies,
		CRMCookies:      in.CRMCookies,
		AccountID:       in.AccountID,
		WorkspaceID:     in.WorkspaceID,
		SegmentID:       in.SegmentID,
	}
}

// CredentialsStatus reports what is stored without echoing cookie values
// swagger:model
type CredentialsStatus struct {
	LinkedIn           bool   `json:"linkedin"`
	Highperformr       bool   `json:"highperformr"`
	AccountID          string `json:"accountId,omitempty"`
	WorkspaceID        string `json:"workspaceId,omitempty"`
	SegmentID          string `json:"segmentId,omitempty"`
	EffectiveAccountID string `json:"effectiveAccountId,omitempty"`
}

// StatusOf summarizes c
func StatusOf(c importer.Credentials) CredentialsStatus {
	return CredentialsStatus{
		LinkedIn:           c.LinkedInCookies != "",
		Highperformr:       c.CRMCookies != "",
		AccountID:          c.AccountID,
		WorkspaceID:        c.WorkspaceID,
		SegmentID:          c.SegmentID,
		EffectiveAccountID: c.EffectiveAccountID(),
	}
}
