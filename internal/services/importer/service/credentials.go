package service

import (
	"context"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

// storage keys shared with the browser extension layout
const (
	keyLinkedInCookies = "linkedinCookies"
	keyCRMCookies      = "highperformrCookies"
	keyAccountID       = "accountId"
	keyWorkspaceID     = "workspaceId"
	keySegmentID       = "segmentId"
)

var credentialKeys = []string{keyLinkedInCookies, keyCRMCookies, keyAccountID, keyWorkspaceID, keySegmentID}

// Credentials stores one value per key in a KV
type Credentials struct {
	kv domain.KV
}

var _ domain.CredentialsPort = (*Credentials)(nil)

// NewCredentials builds a Credentials store over kv
func NewCredentials(kv domain.KV) *Credentials { return &Credentials{kv: kv} }

// Load reads every credential; missing keys are empty
func (c *Credentials) Load(ctx context.Context) (domain.Credentials, error) {
	var out domain.Credentials
	for _, k := range credentialKeys {
		raw, ok, err := c.kv.Get(ctx, k)
		if err != nil {
			return domain.Credentials{}, perr.Wrapf(err, perr.CodeOf(err), "load credential %s", k)
		}
		if ok {
			*field(&out, k) = string(raw)
		}
	}
	return out, nil
}

// Save writes every credential; empty values delete their key
func (c *Credentials) Save(ctx context.Context, in domain.Credentials) error {
	var drop []string
	for _, k := range credentialKeys {
		v := *field(&in, k)
		if v == "" {
			drop = append(drop, k)
			continue
		}
		if err := c.kv.Set(ctx, k, []byte(v)); err != nil {
			return perr.Wrapf(err, perr.CodeOf(err), "save credential %s", k)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	return c.kv.Delete(ctx, drop...)
}

// Update overlays the non-empty fields of patch and returns the result
func (c *Credentials) Update(ctx context.Context, patch domain.Credentials) (domain.Credentials, error) {
	cur, err := c.Load(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}
	for _, k := range credentialKeys {
		if v := *field(&patch, k); v != "" {
			*field(&cur, k) = v
		}
	}
	if err := c.Save(ctx, cur); err != nil {
		return domain.Credentials{}, err
	}
	return cur, nil
}

// Clear removes the credentials; the import ledger is kept
func (c *Credentials) Clear(ctx context.Context) error {
	return c.kv.Delete(ctx, credentialKeys...)
}

func field(c *domain.Credentials, key string) *string {
	switch key {
	case keyLinkedInCookies:
		return &c.LinkedInCookies
	case keyCRMCookies:
		return &c.CRMCookies
	case keyAccountID:
		return &c.AccountID
	case keyWorkspaceID:
		return &c.WorkspaceID
	default:
		return &c.SegmentID
	}
}
