package salesnav

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

func TestFetchPage_OK(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"elements":[{"fullName":"A"},{"fullName":"B"}],"paging":{"total":2}}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Identity: "dXJuOmxp"})
	u, err := c.PageURL("https://www.linkedin.com/sales/search/people?savedSearchId=1", KindPerson, 1)
	if err != nil {
		t.Fatal(err)
	}
	page, err := c.FetchPage(context.Background(), u, `li_at=abc; JSESSIONID="ajax:123"`)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Elements) != 2 || page.Paging.Total != 2 {
		t.Fatalf("page=%+v", page)
	}

	checks := map[string]string{
		"Csrf-Token":                "ajax:123",
		"X-Restli-Protocol-Version": "2.0.0",
		"X-Li-Lang":                 "en_US",
		"X-Li-Identity":             "dXJuOmxp",
		"Cookie":                    `li_at=abc; JSESSIONID="ajax:123"`,
	}
	for k, want := range checks {
		if v := got.Get(k); v != want {
			t.Errorf("header %s=%q want %q", k, v, want)
		}
	}
}

func TestFetchPage_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		code   perr.ErrorCode
		msg    string
	}{
		{http.StatusUnauthorized, perr.ErrorCodeUnauthorized, MsgAuthExpired},
		{http.StatusForbidden, perr.ErrorCodeForbidden, MsgAccessDenied},
		{http.StatusTooManyRequests, perr.ErrorCodeTooManyRequests, ""},
		{http.StatusInternalServerError, perr.ErrorCodeUnavailable, "LinkedIn API error: 500"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			_, err := NewClient(Options{BaseURL: srv.URL}).FetchPage(context.Background(), srv.URL+"/x", "")
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("err=%v code=%v want %v", err, perr.CodeOf(err), tc.code)
			}
			if tc.msg != "" {
				e, _ := perr.As(err)
				if e.Message() != tc.msg {
					t.Fatalf("msg=%q want %q", e.Message(), tc.msg)
				}
			}
		})
	}
}

func TestFetchPage_StatusErrorIsReachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Options{}).FetchPage(context.Background(), srv.URL, "")
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("err=%v", err)
	}
}

func TestFetchPage_BadJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(Options{}).FetchPage(context.Background(), srv.URL, "")
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("err=%v", err)
	}
}

func TestFetchPage_CanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(Options{}).FetchPage(ctx, srv.URL, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

func TestCSRFToken(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		`JSESSIONID="ajax:1"`:         "ajax:1",
		`a=b; JSESSIONID=ajax:2; c=d`: "ajax:2",
		`a=b`:                         "",
		``:                            "",
	} {
		if got := CSRFToken(in); got != want {
			t.Errorf("CSRFToken(%q)=%q want %q", in, got, want)
		}
	}
}
