// Package crm is a thin client for the Highperformr CRM endpoints the import writes to
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	pstrings "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/strings"
)

// DefaultBaseURL is the CRM app host
const DefaultBaseURL = "https://app.highperformr.ai"

const (
	defaultTimeout = 30 * time.Second
	maxBody        = 8 << 20

	sourceTypeWebhook = "importFromWebhook"
	conditionField    = "contact.source"
	conditionOperator = "IN LIKE"
	segmentPageLimit  = 1000
	unnamedSegment    = "Unnamed Segment"
)

// Options configures the Client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests
	HTTPClient *http.Client
}

// Client calls the CRM with a cookie blob taken from a signed in browser
type Client struct {
	http *http.Client
	base string
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		base: strings.TrimRight(o.BaseURL, "/"),
		log:  *logger.Named("crm"),
		now:  time.Now,
	}
}

// StatusError is a non-2xx CRM response
type StatusError struct {
	Op     string
	Status int
}

func (e *StatusError) Error() string { return fmt.Sprintf("crm %s: status %d", e.Op, e.Status) }

// AliasSession appends session=<value> when the blob carries _hp_auth_session
// but no cookie named exactly session
func AliasSession(cookies string) string {
	var auth string
	for part := range strings.SplitSeq(cookies, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(name) {
		case "session":
			return cookies
		case "_hp_auth_session":
			if auth == "" {
				auth = strings.TrimSpace(value)
			}
		}
	}
	if auth == "" {
		return cookies
	}
	return strings.TrimRight(strings.TrimSpace(cookies), ";") + "; session=" + auth
}

// CreateSource creates a webhook source and returns its id
func (c *Client) CreateSource(ctx context.Context, cookies, accountID string, spec SourceSpec) (ID, error) {
	item := sourceItem{SourceType: sourceTypeWebhook}
	item.SourceMeta.Text = spec.Text
	item.SourceMeta.Config.FieldMapping = spec.FieldMapping

	var out createSourceResponse
	status, err := c.do(ctx, http.MethodPost, "/api/sources/bulk-upsert", accountID, cookies,
		createSourceRequest{Sources: []sourceItem{item}}, &out)
	if err != nil {
		return "", err
	}
	if !ok(status) {
		return "", writeErr("create source", status, "Create source failed: %d")
	}
	if len(out.Data) == 0 || out.Data[0].ID == "" {
		return "", perr.RemoteWritef("Failed to get source ID from response")
	}
	return out.Data[0].ID, nil
}

// AddContacts bulk-upserts contacts under sourceID; contacts is sent as the contactsData array
func (c *Client) AddContacts(ctx context.Context, cookies, accountID string, sourceID ID, contacts any) error {
	path := "/api/contacts/" + url.PathEscape(string(sourceID)) + "/bulk-upsert-contacts"
	status, err := c.do(ctx, http.MethodPost, path, accountID, cookies, addContactsRequest{ContactsData: contacts}, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return writeErr("add contacts", status, "Add contacts failed: %d")
	}
	return nil
}

// GetSegment reads the condition values and source ids of a segment
func (c *Client) GetSegment(ctx context.Context, cookies, accountID string, segmentID ID) (Segment, error) {
	if segmentID == "" {
		return Segment{}, perr.InvalidArgf("Segment ID is required")
	}
	var out segmentResponse
	status, err := c.do(ctx, http.MethodGet, segmentPath(segmentID), accountID, cookies, nil, &out)
	if err != nil {
		return Segment{}, err
	}
	if !ok(status) {
		return Segment{}, writeErr("get segment", status, "Failed to get segment data: %d")
	}
	a := out.Data.Attributes
	id := out.Data.ID
	if id == "" {
		id = segmentID
	}
	return Segment{
		ID:              id,
		Name:            a.Name,
		ConditionValues: nonNil(a.Condition.Value),
		Sources:         nonNil(a.SegmentSources),
	}, nil
}

// PatchSegment replaces the source condition and source list of a segment
func (c *Client) PatchSegment(ctx context.Context, cookies, accountID string, segmentID ID, conditionValues, sources []Entry) error {
	if segmentID == "" {
		return perr.InvalidArgf("Segment ID is required")
	}
	body := patchSegmentRequest{
		Condition: segmentCondition{
			Field:    conditionField,
			Value:    nonNil(conditionValues),
			Operator: conditionOperator,
		},
		SegmentSources: nonNil(sources),
	}
	status, err := c.do(ctx, http.MethodPatch, segmentPath(segmentID), accountID, cookies, body, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return writeErr("update segment", status, "Failed to update segment: %d")
	}
	return nil
}

// Segments lists the segments of an account for the picker
func (c *Client) Segments(ctx context.Context, cookies, accountID string) ([]SegmentSummary, error) {
	var out filterSegmentsResponse
	status, err := c.do(ctx, http.MethodPost, "/api/segments/filter-segments", accountID, cookies,
		filterSegmentsRequest{Limit: segmentPageLimit}, &out)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, readErr("list segments", status, "Failed to fetch segments: %d")
	}
	segs := make([]SegmentSummary, 0, len(out.Data))
	for _, d := range out.Data {
		name := pstrings.FirstNonBlank(d.Attributes.Name, d.Name, unnamedSegment)
		segs = append(segs, SegmentSummary{ID: d.ID, Name: name})
	}
	return segs, nil
}

// Session probes the session endpoint
// a non-2xx answer is an unauthenticated Session, not an error; a 2xx non-JSON answer counts as authenticated
func (c *Client) Session(ctx context.Context, cookies string) (Session, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/users/session", "", cookies, nil)
	if err != nil {
		return Session{}, err
	}
	defer c.closeBody(resp)

	s := Session{Status: resp.StatusCode}
	if !ok(resp.StatusCode) {
		return s, nil
	}
	s.Authenticated = true
	if !isJSON(resp) {
		return s, nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return s, perr.Wrapf(err, perr.ErrorCodeUnavailable, "crm read session failed")
	}
	var sr sessionResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return s, perr.Wrapf(err, perr.ErrorCodeJSON, "crm decode session failed")
	}
	s.User = raw
	s.AccountID = rawString(sr.AccountID)
	s.Workspaces = sr.Data.Attributes.Accounts
	return s, nil
}

// Workspaces lists the accounts of the session; a non-JSON answer yields none
func (c *Client) Workspaces(ctx context.Context, cookies string) ([]Workspace, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/users/session", "", cookies, nil)
	if err != nil {
		return nil, err
	}
	defer c.closeBody(resp)

	if !ok(resp.StatusCode) {
		return nil, readErr("list workspaces", resp.StatusCode, "Failed to fetch workspaces: %d")
	}
	if !isJSON(resp) {
		return []Workspace{}, nil
	}
	var sr sessionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&sr); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "crm decode session failed")
	}
	if sr.Data.Attributes.Accounts == nil {
		return []Workspace{}, nil
	}
	return sr.Data.Attributes.Accounts, nil
}

// do sends a JSON request and decodes a 2xx JSON body into out when out is not nil
func (c *Client) do(ctx context.Context, method, path, accountID, cookies string, in, out any) (int, error) {
	resp, err := c.send(ctx, method, path, accountID, cookies, in)
	if err != nil {
		return 0, err
	}
	defer c.closeBody(resp)

	if !ok(resp.StatusCode) || out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return resp.StatusCode, perr.Wrapf(err, perr.ErrorCodeJSON, "crm decode %s failed", path)
	}
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, path, accountID, cookies string, in any) (*http.Response, error) {
	u := c.base + path
	if accountID != "" {
		u += "?accountId=" + url.QueryEscape(accountID)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "crm encode %s failed", path)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "crm new request failed")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if cookies != "" {
		req.Header.Set("Cookie", AliasSession(cookies))
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "crm %s %s failed", method, path)
	}
	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Msg("crm http response")
	return resp, nil
}

func (c *Client) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.log.Error().Err(err).Msg("crm close body failed")
	}
}

func segmentPath(id ID) string { return "/api/segments/" + url.PathEscape(string(id)) }

func ok(status int) bool { return status >= 200 && status <= 299 }

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func writeErr(op string, status int, format string) error {
	return perr.Wrap(&StatusError{Op: op, Status: status}, perr.ErrorCodeRemoteWrite, fmt.Sprintf(format, status))
}

// readErr keeps auth failures distinguishable for the api layer
func readErr(op string, status int, format string) error {
	code := perr.ErrorCodeUnavailable
	switch status {
	case http.StatusUnauthorized:
		code = perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		code = perr.ErrorCodeForbidden
	}
	return perr.Wrap(&StatusError{Op: op, Status: status}, code, fmt.Sprintf(format, status))
}

func nonNil(ids []Entry) []Entry {
	if ids == nil {
		return []Entry{}
	}
	return ids
}
