// Package router sets up all HTTP routes and middleware chains for the
// storefront server. Visitor rendering and the editor API get separate
// middleware stacks: the editor API is rate limited, the public side is not.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable editor rate
// limiting (tests).
func New(public *handlers.Public, editor *handlers.Editor, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check.
	r.Get("/health", healthHandler)

	// Visitor-facing page rendering.
	r.Route("/store/{storeID}", func(r chi.Router) {
		r.Get("/page/{template}", public.Page)
	})

	// Editor API.
	r.Route("/editor", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Get("/section-types", editor.SectionTypes)
		r.Route("/{themeID}", func(r chi.Router) {
			r.Post("/preview", editor.Preview)
			r.Post("/save", editor.Save)
			r.Post("/publish", editor.Publish)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
