// Package swaggerkit serves the embedded OpenAPI document and the Swagger UI
package swaggerkit

import (
	_ "embed"
	"net/http"

	phttp "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openapi []byte

// Mount registers /api/docs when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDoc)
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

func serveDoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(openapi)
}
