package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/code-critic/internal/review"
	"github.com/sevigo/code-critic/internal/server/handler"
)

// NewRouter creates and configures a new HTTP router with middleware and
// API routes. The write timeout is generous because a live review call
// can spend its full retry budget before responding.
func NewRouter(svc *review.Service, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		reviewHandler := handler.NewReviewHandler(svc, logger)
		r.Post("/reviews", reviewHandler.Create)
		r.Get("/reviews", reviewHandler.List)
		r.Get("/reviews/{id}", reviewHandler.Get)
		r.Delete("/reviews/{id}", reviewHandler.Delete)
	})

	return r
}
