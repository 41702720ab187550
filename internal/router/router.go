// Package router sets up all HTTP routes and middleware chains for the
// Giftora API. Read routes are public; studio writes are rate limited.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftora/internal/handlers"
	"giftora/internal/metrics"
	"giftora/internal/middleware"
)

// Handlers groups the handler sets the router mounts.
type Handlers struct {
	Templates *handlers.Templates
	Preview   *handlers.Preview
	Studio    *handlers.Studio
	History   *handlers.History
}

// Options configures the cross-cutting middleware. All fields are optional.
type Options struct {
	Metrics       *metrics.Metrics
	CORSOrigins   []string
	StudioLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger(opts.Metrics))
	r.Use(middleware.SecureHeaders(opts.CORSOrigins))
	r.Use(middleware.CORS(opts.CORSOrigins))

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	r.Get("/api/categories", h.Templates.Categories)

	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", h.Templates.List)
		r.Get("/latest", h.Templates.Latest)
		r.Get("/trending", h.Templates.Trending)
		r.Get("/admin", h.Templates.Admin)
		r.Get("/by-category/{category}", h.Templates.ByCategory)
		r.Get("/{id}", h.Templates.Get)
		r.Get("/{id}/preview", h.Preview.Template)
	})

	// Public page for a customer-visible template.
	r.Get("/p/{id}", h.Preview.Public)

	r.Route("/api/studio", func(r chi.Router) {
		if opts.StudioLimiter != nil {
			r.Use(opts.StudioLimiter.Middleware)
		}
		r.Post("/preview", h.Preview.Compose)
		r.Post("/transform", h.Studio.Transform)
		r.Post("/html-templates", h.Studio.CreateHTML)
		r.Put("/html-templates/{id}", h.Studio.UpdateHTML)
		r.Post("/html-templates/{id}/publish", h.Studio.Publish)
		r.Post("/react-templates", h.Studio.CreateReact)
	})

	r.Route("/api/admin", func(r chi.Router) {
		// Review queue.
		r.Get("/html-templates", h.Studio.Queue)
		r.Post("/html-templates/{id}/approve", h.Studio.Approve)
		r.Post("/html-templates/{id}/reject", h.Studio.Reject)
		if h.History != nil {
			r.Get("/cache-log", h.History.CacheLog)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
