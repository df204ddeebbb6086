// Package server exposes the built index over HTTP: a health probe and
// a semantic search endpoint backed by the remote vector collection.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zipdex/internal/embedder"
	"zipdex/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Embedder   embedder.Embedder
	Store      vectorstore.VectorStore
	Collection string
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	r.Method(http.MethodGet, "/healthz", NewHealthHandler(deps.Store, deps.Collection))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/search", NewSearchHandler(deps.Embedder, deps.Store, deps.Collection))
	})

	return r
}
