package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/printmechecks/server/internal/auth"
	"github.com/printmechecks/server/internal/config"
)

// setupRoutes configures all API routes. The webhook lives inside /api
// but outside the auth group: providers sign their payloads instead of
// carrying bearer tokens.
func setupRoutes(cfg config.ServerConfig, h *Handlers, verifier *auth.Verifier, limiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Provider callbacks: signature-verified, optionally rate limited
		r.Group(func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/webhook/postgrid", h.PostGridWebhook)
		})

		// Everything else sits behind bearer auth (pass-through when
		// auth is not configured)
		r.Group(func(r chi.Router) {
			r.Use(verifier.Middleware)

			r.Post("/documents", h.UploadDocument)
			r.Get("/documents", h.ListDocuments)
			r.Get("/documents/{id}", h.GetDocument)
			r.Get("/documents/{id}/content", h.GetDocumentContent)

			r.Post("/send", h.CreateSendJob)
			r.Get("/send", h.ListSendJobs)
			r.Get("/send/{id}", h.GetSendJob)
			r.Post("/send/{id}/refresh", h.RefreshSendJob)

			r.Get("/me", h.Me)
		})
	})

	return r
}
