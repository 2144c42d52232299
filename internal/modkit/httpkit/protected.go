package httpkit

import (
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/middleware"
)

// Protected groups routes behind bearer auth and, when l is set, the per-caller rate limit
// a nil port leaves the group open
func Protected(r Router, p middleware.AuthPort, l *middleware.RateLimiter, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p), RateLimit(l))
		fn(gr)
	})
}
