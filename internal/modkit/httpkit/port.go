package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

// TokenPort implements middleware.AuthPort against a static token table
type TokenPort struct {
	tokens map[string]string // token -> client id
}

// NewTokenPort parses entries of the form client:token
// a bare token maps to the client id "default"; empty input returns nil so auth is disabled
func NewTokenPort(entries []string) *TokenPort {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		id, tok, ok := strings.Cut(e, ":")
		if !ok {
			id, tok = "default", e
		}
		if tok = strings.TrimSpace(tok); tok != "" {
			m[tok] = strings.TrimSpace(id)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return &TokenPort{tokens: m}
}

// Parse reads Authorization: Bearer <token> and returns the client id bound to it
func (p *TokenPort) Parse(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	for tok, id := range p.tokens {
		if subtle.ConstantTimeCompare([]byte(tok), []byte(raw)) == 1 {
			return id, nil
		}
	}
	return "", perrs.Unauthorizedf("invalid bearer token")
}
