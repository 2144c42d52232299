package domain

import (
	"context"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/quota"
)

// SearchAPI builds and fetches search pages
type SearchAPI interface {
	PageURL(searchURL string, kind salesnav.Kind, page int) (string, error)
	FetchPage(ctx context.Context, pageURL, cookies string) (salesnav.RawPage, error)
}

// CRMWriter is the three step write sequence
type CRMWriter interface {
	CreateSource(ctx context.Context, cookies, accountID string, spec crm.SourceSpec) (crm.ID, error)
	AddContacts(ctx context.Context, cookies, accountID string, sourceID crm.ID, contacts any) error
	GetSegment(ctx context.Context, cookies, accountID string, segmentID crm.ID) (crm.Segment, error)
	PatchSegment(ctx context.Context, cookies, accountID string, segmentID crm.ID, conditionValues, sources []crm.Entry) error
}

// CRMDirectory reads session and picker data from the CRM
type CRMDirectory interface {
	Session(ctx context.Context, cookies string) (crm.Session, error)
	Workspaces(ctx context.Context, cookies string) ([]crm.Workspace, error)
	Segments(ctx context.Context, cookies, accountID string) ([]crm.SegmentSummary, error)
}

// Admitter gates outbound search requests
type Admitter interface {
	Admit(ctx context.Context) error
}

// Ledger is the rolling import quota
type Ledger interface {
	Check(ctx context.Context, n int) quota.CheckResult
	Record(ctx context.Context, n int)
}

// KV is the opaque key value store behind the ledger and the credentials
type KV interface {
	quota.Store
	Delete(ctx context.Context, keys ...string) error
}

// CredentialStore persists Credentials
type CredentialStore interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, c Credentials) error
	Clear(ctx context.Context) error
}

// ImportPort runs imports; emit receives every event including the terminal one
type ImportPort interface {
	Run(ctx context.Context, req Request, emit func(Event)) Result
}

// QuotaPort answers quota queries
type QuotaPort interface {
	Check(ctx context.Context, n int) quota.CheckResult
}

// CredentialsPort manages stored credentials
type CredentialsPort interface {
	CredentialStore
	Update(ctx context.Context, patch Credentials) (Credentials, error)
}

// DirectoryPort serves the CRM session and picker endpoints with stored credentials
type DirectoryPort interface {
	Session(ctx context.Context) (crm.Session, error)
	Workspaces(ctx context.Context) ([]crm.Workspace, error)
	Segments(ctx context.Context, accountID string) ([]crm.SegmentSummary, error)
}
