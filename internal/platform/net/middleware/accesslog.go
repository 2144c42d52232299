package middleware

import (
	"net/http"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
	pnet "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow logs requests taking at least Slow at warn; 0 disables
	Slow time.Duration
	// SkipPaths are not logged (health probes)
	SkipPaths []string
}

// captureWriter records status and bytes; Unwrap keeps http.ResponseController working for streams
type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

func (cw *captureWriter) Unwrap() http.ResponseWriter { return cw.ResponseWriter }

// AccessLog logs one zerolog line per request and tags the context with the request id
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(opt.SkipPaths))
	for _, p := range opt.SkipPaths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()))
			r = r.WithContext(ctx)

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(cw, r)
			elapsed := time.Since(start)

			log := logger.C(ctx)
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("client", pnet.ClientID(ctx)).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
