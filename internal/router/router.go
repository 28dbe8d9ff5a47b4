// Package router sets up all HTTP routes and middleware chains for the
// vault API. Every /api route requires a resolved user; admin routes
// add a role check on top.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"runvault/internal/handlers"
	"runvault/internal/middleware"
)

const (
	// uploadRateLimit caps upload-URL registrations per client IP.
	uploadRateLimit  = 60
	uploadRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(users middleware.UserFinder, vault *handlers.Vault, photos *handlers.Photos, runs *handlers.Runs) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadUser(users))

	// Health check, no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/vault", func(r chi.Router) {
			r.Get("/root", vault.Root)
			r.Get("/recent-photos", vault.RecentPhotos)

			r.Route("/folders", func(r chi.Router) {
				r.Post("/", vault.CreateFolder)
				r.Get("/{id}", vault.Folder)
				r.Delete("/{id}", vault.DeleteFolder)
				r.Get("/{id}/children", vault.Children)
				r.Get("/{id}/breadcrumbs", vault.Breadcrumbs)
				r.Post("/{id}/photos", vault.AttachPhotos)
			})
		})

		r.Route("/photos", func(r chi.Router) {
			uploadLimiter := middleware.NewRateLimiter(uploadRateLimit, uploadRateWindow)
			r.With(uploadLimiter.Middleware).Post("/upload-urls", photos.UploadURLs)
			r.Delete("/{id}", photos.Delete)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", runs.List)
			r.Post("/", runs.Create)
			r.Get("/{id}", runs.Get)
			r.Patch("/{id}", runs.Update)
			r.Delete("/{id}", runs.Delete)
			r.Post("/{id}/photos", runs.AttachPhotos)
		})

		// Admin-only maintenance.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/backfill-folders", vault.BackfillFolders)
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
