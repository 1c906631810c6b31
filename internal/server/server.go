// Package server is the thin HTTP transport that exposes the query engine and
// schema explorer to callers. All validation lives in the engine; handlers
// only decode input, route, and encode results.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gridiron-data/gridiron/internal/cache"
	"github.com/gridiron-data/gridiron/internal/explorer"
	"github.com/gridiron-data/gridiron/internal/query"
)

// Executor runs a serialized document against the upstream data source.
type Executor interface {
	Execute(ctx context.Context, doc *query.Document) (json.RawMessage, error)
}

// Server wires the engine, explorer, executor, and optional result cache
// behind an HTTP API.
type Server struct {
	builder  *query.Builder
	explorer *explorer.Explorer
	executor Executor
	cache    *cache.ResultCache
	logger   *zap.Logger
	router   chi.Router
}

// New creates a server. The cache may be nil, in which case every query goes
// to the executor.
func New(builder *query.Builder, exp *explorer.Explorer, executor Executor,
	resultCache *cache.ResultCache, logger *zap.Logger) *Server {

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		builder:  builder,
		explorer: exp,
		executor: executor,
		cache:    resultCache,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Post("/query/validate", s.handleValidate)

		r.Route("/schema", func(r chi.Router) {
			r.Get("/search", s.handleSearch)
			r.Get("/entities/{name}", s.handleDescribe)
			r.Get("/stats", s.handleStats)
		})

		r.Get("/cache/stats", s.handleCacheStats)
	})

	return r
}
