// Package api serves the generated token list artifacts over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
)

const (
	moduleName = "api"
)

// NewRouter returns the HTTP handler serving `artifacts`.
func NewRouter(artifacts *Artifacts, m metrics.RequestMetrics, l *log.Logger) http.Handler {
	logger := l.WithModule(moduleName)
	h := newHandler(artifacts, logger)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m, logger))
	r.Use(middleware.Recoverer)
	r.Use(CorsMiddleware)

	r.Get("/tokenlist.json", h.getTokenList)
	r.Get("/tokens", h.getTokens)
	r.Get("/tokens/{opTokenId}", h.getToken)
	r.Get("/chains", h.getChains)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		HumanReadableJsonErrorHandler(w, r, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		HumanReadableJsonErrorHandler(w, r, ErrMethodNotAllowed)
	})
	return r
}
