package service

import (
	"context"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// Directory answers CRM session and picker queries with the stored cookies
type Directory struct {
	crm   domain.CRMDirectory
	creds domain.CredentialStore
}

var _ domain.DirectoryPort = (*Directory)(nil)

// NewDirectory builds a Directory
func NewDirectory(c domain.CRMDirectory, creds domain.CredentialStore) *Directory {
	return &Directory{crm: c, creds: creds}
}

// Session probes the CRM session
func (d *Directory) Session(ctx context.Context) (crm.Session, error) {
	c, err := d.creds.Load(ctx)
	if err != nil {
		return crm.Session{}, err
	}
	return d.crm.Session(ctx, c.CRMCookies)
}

// Workspaces lists the accounts of the stored session
func (d *Directory) Workspaces(ctx context.Context) ([]crm.Workspace, error) {
	c, err := d.creds.Load(ctx)
	if err != nil {
		return nil, err
	}
	return d.crm.Workspaces(ctx, c.CRMCookies)
}

// Segments lists segments of accountID, or of the stored workspace when empty
func (d *Directory) Segments(ctx context.Context, accountID string) ([]crm.SegmentSummary, error) {
	c, err := d.creds.Load(ctx)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		accountID = c.WorkspaceID
	}
	if accountID == "" {
		accountID = c.EffectiveAccountID()
	}
	if accountID == "" {
		return nil, perr.InvalidArgf("workspace id is required")
	}
	return d.crm.Segments(ctx, c.CRMCookies, accountID)
}
