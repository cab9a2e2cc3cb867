// Package httpapi exposes the sync-trigger surface spec.md §6 describes,
// via chi. The read API (query facade, analytics engine) is deliberately
// not exposed here: spec.md's non-goals scope box-score retrieval and
// entity CRUD endpoints out of this surface — those components are
// consumed directly by other collaborators, not served over HTTP by this
// module. Handlers hold no business logic beyond parameter parsing and
// response shaping — every decision is delegated to the sync orchestrator.
package httpapi

import (
	"hoopsync/internal/config"
	"hoopsync/internal/repository"
	"hoopsync/internal/sync"

	"github.com/go-playground/validator/v10"
)

// Handler holds the shared dependencies every route needs.
type Handler struct {
	orchestrator *sync.Orchestrator
	db           *repository.DB
	cfg          *config.Config
	validate     *validator.Validate
}

func New(orchestrator *sync.Orchestrator, db *repository.DB, cfg *config.Config) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		db:           db,
		cfg:          cfg,
		validate:     validator.New(),
	}
}

// resolveSource validates source against the configured source map,
// returning the structured 400 spec.md §6 requires for "unknown source" and
// "source not enabled" before any orchestrator call is made.
func (h *Handler) resolveSource(source string) (config.SourceConfig, bool, string) {
	sc, ok := h.cfg.Sources[source]
	if !ok {
		return config.SourceConfig{}, false, "unknown source: " + source
	}
	if !sc.Enabled {
		return config.SourceConfig{}, false, "source not enabled: " + source
	}
	return sc, true, ""
}
