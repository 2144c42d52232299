// Package salesnav talks to the Sales Navigator search api and reshapes its results
package salesnav

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	maxBody        = 16 << 20
)

// Auth failure messages shown to the user as is
const (
	MsgAuthExpired  = "LinkedIn authentication expired. Please refresh the page and try again."
	MsgAccessDenied = "Access denied. Please ensure you have Sales Navigator access."
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Identity is sent as x-li-identity when set
	Identity string

	// HTTPClient overrides the transport, mostly for tests
	HTTPClient *http.Client
}

// Client fetches search pages with a cookie blob taken from a signed in browser
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
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
		opts: o,
		log:  *logger.Named("salesnav"),
		now:  time.Now,
	}
}

// PageURL builds the api URL for page against this client's base
func (c *Client) PageURL(searchURL string, kind Kind, page int) (string, error) {
	return BuildPageURL(c.opts.BaseURL, searchURL, kind, page)
}

// StatusError is a non-2xx search response that is neither an auth failure nor a rate limit
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string { return fmt.Sprintf("LinkedIn API error: %d", e.Status) }

// FetchPage issues one GET and decodes the page
// 401 and 403 map to Unauthorized and Forbidden, 429 to TooManyRequests, other failures wrap a StatusError
func (c *Client) FetchPage(ctx context.Context, pageURL, cookies string) (RawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return RawPage{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "salesnav new request failed")
	}
	c.setHeaders(req, cookies)

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return RawPage{}, ctx.Err()
		}
		return RawPage{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "salesnav request failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("salesnav close body failed")
		}
	}()

	c.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", c.now().Sub(start)).
		Str("path", req.URL.Path).
		Msg("salesnav http response")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return RawPage{}, perr.Unauthorizedf("%s", MsgAuthExpired)
	case resp.StatusCode == http.StatusForbidden:
		return RawPage{}, perr.Forbiddenf("%s", MsgAccessDenied)
	case resp.StatusCode == http.StatusTooManyRequests:
		return RawPage{}, perr.TooManyRequestsf("Rate limited. Please wait a moment and try again.")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		se := &StatusError{Status: resp.StatusCode, Body: string(tail)}
		return RawPage{}, perr.Wrap(se, perr.ErrorCodeUnavailable, se.Error())
	}

	var page RawPage
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&page); err != nil {
		return RawPage{}, perr.Wrapf(err, perr.ErrorCodeJSON, "salesnav decode failed")
	}
	return page, nil
}

func (c *Client) setHeaders(req *http.Request, cookies string) {
	h := req.Header
	h.Set("accept", "*/*")
	h.Set("accept-language", "en-US,en;q=0.9")
	if tok := CSRFToken(cookies); tok != "" {
		h.Set("csrf-token", tok)
	}
	h.Set("x-li-lang", "en_US")
	h.Set("x-restli-protocol-version", "2.0.0")
	if c.opts.Identity != "" {
		h.Set("x-li-identity", c.opts.Identity)
	}
	if cookies != "" {
		h.Set("cookie", cookies)
	}
	h.Set("Referer", "https://www.linkedin.com/sales/")
	h.Set("User-Agent", c.opts.UserAgent)
}

// CSRFToken returns the JSESSIONID cookie value with its quotes stripped
func CSRFToken(cookies string) string {
	for part := range strings.SplitSeq(cookies, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == "JSESSIONID" {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}
