package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caseline-ai/caseline/internal/api"
	"github.com/caseline-ai/caseline/internal/api/handlers"
	"github.com/caseline-ai/caseline/internal/api/middleware"
)

type RouterConfig struct {
	CaseHandler   *handlers.CaseHandler
	SearchHandler *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Judgments arrive as full text; allow generously sized bodies.
	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cases", func(r chi.Router) {
		r.Post("/", cfg.CaseHandler.Ingest)
		r.Post("/batch", cfg.CaseHandler.IngestBatch)
		r.Get("/", cfg.CaseHandler.List)
		r.Get("/{id}", cfg.CaseHandler.Get)
		r.Delete("/{id}", cfg.CaseHandler.Delete)
	})

	r.Post("/search", cfg.SearchHandler.Search)

	return r
}
