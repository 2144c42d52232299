package middleware

import (
	"net/http"

	pnet "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net"
)

// AuthPort authenticates a request and returns the caller's client id
type AuthPort interface {
	Parse(r *http.Request) (clientID string, err error)
}

// Auth rejects requests the port refuses; a nil port lets everything through
// write receives the mapped status and error body
func Auth(p AuthPort, write func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := p.Parse(r)
			if err != nil {
				write(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithClient(r.Context(), id)))
		})
	}
}
