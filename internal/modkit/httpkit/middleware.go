package httpkit

import (
	"net/http"
	"time"

	perrs "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	phttp "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	SlowRequest time.Duration
	SkipLog     []string
}

// CommonStack returns the baseline middleware for the api router
// no Timeout or Compress here: both break long lived event streams
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest, SkipPaths: o.SkipLog}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.NoCache(),
		middleware.StripSlashes(),
	}
}

// Auth wires the auth middleware to the envelope error writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	if p == nil {
		return middleware.Auth(nil, nil)
	}
	return middleware.Auth(p, phttp.RespondError)
}

// RateLimit wires the per-caller limiter to the envelope error writer
func RateLimit(l *middleware.RateLimiter) func(http.Handler) http.Handler {
	return middleware.RateLimit(l, phttp.RespondError, func(d time.Duration) error {
		return perrs.TooManyRequestsf("rate limit exceeded, retry in %s", d.Round(time.Second))
	})
}
