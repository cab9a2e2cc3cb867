package httpapi

import (
	"hoopsync/internal/config"
	"hoopsync/internal/repository"
	"hoopsync/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter builds the chi router serving the sync-trigger surface
// described in spec.md §6.
func NewRouter(orchestrator *sync.Orchestrator, db *repository.DB, cfg *config.Config) *chi.Mux {
	h := New(orchestrator, db, cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	c := corslib.New(corslib.Options{
		AllowedOrigins: cfg.CORSAllowOrigins,
		AllowedMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Get("/docs/doc.json", serveOpenAPISpec)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/sync", func(r chi.Router) {
		r.Post("/{source}/teams/{season_external_id}", h.TriggerTeamsSync)
		r.Post("/{source}/season/{season_external_id}", h.TriggerSeasonSync)
		r.Post("/{source}/game/{game_external_id}", h.TriggerGameSync)
		r.Get("/status", h.SyncStatus)
		r.Get("/logs", h.SyncLogs)
	})

	return r
}
