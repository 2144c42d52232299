package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	pnet "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/testkit"
)

type portFunc func(r *http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func writeStatus(code int) func(w http.ResponseWriter, r *http.Request, err error) {
	return func(w http.ResponseWriter, _ *http.Request, err error) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(err.Error()))
	}
}

func TestAuth(t *testing.T) {
	t.Parallel()

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.ClientID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	port := portFunc(func(r *http.Request) (string, error) {
		if r.Header.Get("Authorization") != "Bearer ok" {
			return "", errors.New("nope")
		}
		return "ext", nil
	})
	h := Auth(port, writeStatus(http.StatusUnauthorized))(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "ext" {
		t.Fatalf("code=%d client=%q", rec.Code, seen)
	}

	// nil port is a pass-through
	rec = httptest.NewRecorder()
	Auth(nil, nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("nil port code=%d", rec.Code)
	}
}

func TestRateLimiter_AllowAndRefill(t *testing.T) {
	t.Parallel()

	clk := testkit.NewClock(time.Unix(1_700_000_000, 0))
	l := NewRateLimiter(RateLimitOptions{Requests: 2, Window: 2 * time.Second, Now: clk.Now})

	for i := range 2 {
		if ok, _, _ := l.Allow("a"); !ok {
			t.Fatalf("call %d refused", i)
		}
	}
	ok, _, wait := l.Allow("a")
	if ok || wait < time.Second {
		t.Fatalf("third call ok=%v wait=%s", ok, wait)
	}
	// other keys have their own bucket
	if ok, _, _ := l.Allow("b"); !ok {
		t.Fatal("b refused")
	}

	clk.Advance(time.Second)
	if ok, _, _ := l.Allow("a"); !ok {
		t.Fatal("refill did not happen")
	}

	clk.Advance(time.Hour)
	if n := l.Sweep(time.Minute); n != 2 {
		t.Fatalf("sweep removed %d want 2", n)
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Parallel()

	if NewRateLimiter(RateLimitOptions{}) != nil {
		t.Fatal("zero options should disable the limiter")
	}

	l := NewRateLimiter(RateLimitOptions{Requests: 1, Window: time.Minute})
	tooMany := func(d time.Duration) error { return perr.TooManyRequestsf("slow down, retry in %s", d) }
	h := RateLimit(l, writeStatus(http.StatusTooManyRequests), tooMany)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("first code=%d headers=%v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") == "" {
		t.Fatalf("second code=%d headers=%v", rec.Code, rec.Header())
	}
	testkit.MustContain(t, rec.Body.String(), "slow down")
}

func TestRecoverJSON(t *testing.T) {
	t.Parallel()

	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code=%d", rec.Code)
	}
	var body panicWire
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != perr.ErrorCodePanic || body.Error != "panic recovered" {
		t.Fatalf("body=%+v", body)
	}
}

func TestRecoverJSON_AbortHandlerRepanics(t *testing.T) {
	t.Parallel()

	h := RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) }))
	testkit.MustPanic(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestAccessLog_CapturesAndUnwraps(t *testing.T) {
	t.Parallel()

	var unwrapped bool
	h := AccessLog(AccessLogOptions{SkipPaths: []string{"/skip"}})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, unwrapped = w.(interface{ Unwrap() http.ResponseWriter })
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("hi"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusAccepted || rec.Body.String() != "hi" {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
	if !unwrapped {
		t.Fatal("capture writer must expose Unwrap for flushing")
	}
}
