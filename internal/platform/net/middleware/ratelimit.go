package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	pnet "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net"

	"golang.org/x/time/rate"
)

// RateLimitOptions configures the per-caller token bucket
type RateLimitOptions struct {
	Requests int           // tokens per Window
	Window   time.Duration // refill window
	Burst    int           // bucket size; defaults to Requests
	Now      func() time.Time
}

// RateLimiter keeps one token bucket per caller key
// keys are the authenticated client id or the remote ip
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	perWin  int
	now     func() time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns nil when Requests or Window is not positive
func NewRateLimiter(o RateLimitOptions) *RateLimiter {
	if o.Requests <= 0 || o.Window <= 0 {
		return nil
	}
	if o.Burst <= 0 {
		o.Burst = o.Requests
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(o.Requests) / o.Window.Seconds()),
		burst:   o.Burst,
		perWin:  o.Requests,
		now:     o.Now,
	}
}

// Allow takes one token for key and reports remaining tokens and the wait when refused
func (l *RateLimiter) Allow(key string) (ok bool, remaining int, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	b := l.buckets[key]
	if b == nil {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0, time.Second
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, 0, max(d, time.Second)
	}
	return true, max(int(b.lim.TokensAt(now)), 0), 0
}

// Sweep drops buckets idle for longer than idle and returns how many were removed
func (l *RateLimiter) Sweep(idle time.Duration) int {
	cut := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cut) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// RateLimit rejects callers over budget with 429 through write
// a nil limiter disables the middleware
func RateLimit(l *RateLimiter, write func(w http.ResponseWriter, r *http.Request, err error), tooMany func(retryAfter time.Duration) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, wait := l.Allow(callerKey(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.perWin))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
				write(w, r, tooMany(wait))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id := pnet.ClientID(r.Context()); id != "" {
		return "client:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
