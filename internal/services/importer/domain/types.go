// Package domain defines the types and interfaces for the importer service
package domain

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/quota"
)

// Request starts one import run
type Request struct {
	SearchURL string
	Kind      salesnav.Kind // empty means detect from SearchURL
	SegmentID string        // empty means the stored segment
}

// EventType is the progress protocol message type
type EventType string

// Progress protocol message types
const (
	EventProgress      EventType = "PROGRESS_UPDATE"
	EventComplete      EventType = "COMPLETE"
	EventError         EventType = "ERROR"
	EventLimitExceeded EventType = "LIMIT_EXCEEDED"
)

// Event is one progress message
type Event struct {
	Type             EventType `json:"type"`
	Progress         float64   `json:"progress,omitempty"`
	Status           string    `json:"status,omitempty"`
	Message          string    `json:"message,omitempty"`
	Error            string    `json:"error,omitempty"`
	TimeUntilReset   string    `json:"timeUntilReset,omitempty"`
	TimeUntilResetMs int64     `json:"timeUntilResetMs,omitempty"`
}

// Terminal reports whether e ends a run
func (e Event) Terminal() bool { return e.Type != EventProgress }

// Outcome is how a run ended
type Outcome string

// Run outcomes
const (
	OutcomeComplete      Outcome = "complete"
	OutcomeLimitExceeded Outcome = "limit_exceeded"
	OutcomeError         Outcome = "error"
)

// Result is the single terminal value of a run
type Result struct {
	RunID    string             `json:"runId"`
	Outcome  Outcome            `json:"outcome"`
	Kind     salesnav.Kind      `json:"kind,omitempty"`
	Fetched  int                `json:"fetched"`
	Imported int                `json:"imported"`
	SourceID string             `json:"sourceId,omitempty"`
	Message  string             `json:"message,omitempty"`
	Error    string             `json:"error,omitempty"`
	Quota    *quota.CheckResult `json:"quota,omitempty"`

	// Err keeps the typed failure for callers that map codes; not serialized
	Err error `json:"-"`
}

// Credentials are the browser-captured secrets and CRM selections a run uses
type Credentials struct {
	LinkedInCookies string `json:"linkedinCookies,omitempty"`
	CRMCookies      string `json:"highperformrCookies,omitempty"`
	AccountID       string `json:"accountId,omitempty"`
	WorkspaceID     string `json:"workspaceId,omitempty"`
	SegmentID       string `json:"segmentId,omitempty"`
}

// EffectiveAccountID is the account used for CRM calls, falling back to the workspace
func (c Credentials) EffectiveAccountID() string {
	if c.AccountID == "" || c.AccountID == "unknown" {
		return c.WorkspaceID
	}
	return c.AccountID
}
