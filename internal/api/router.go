package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/mediashim/internal/api/handler"
	mw "github.com/iconidentify/mediashim/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	mediaHandler *handler.MediaHandler,
	healthHandler *handler.HealthHandler,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	// CORS for the front-end
	r.Use(mw.CORS)

	// Health endpoints
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", healthHandler.Stats)

		// fetch-media
		r.Get("/media", mediaHandler.Proxy)
		r.Post("/media/fetch", mediaHandler.Fetch)

		// save-video
		r.Post("/videos", mediaHandler.SaveVideo)
	})

	return r
}
