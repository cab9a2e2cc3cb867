package httpapi

import (
	"net/http"
	"strconv"

	"hoopsync/internal/models"

	"github.com/go-chi/chi/v5"
)

func parseIncludePBP(r *http.Request) bool {
	v := r.URL.Query().Get("include_pbp")
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// TriggerSeasonSync handles POST /sync/{source}/season/{season_external_id}.
func (h *Handler) TriggerSeasonSync(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	seasonExternalID := chi.URLParam(r, "season_external_id")

	if _, ok, detail := h.resolveSource(source); !ok {
		writeErrorDetail(w, http.StatusBadRequest, detail)
		return
	}

	entry, err := h.orchestrator.SyncSeason(r.Context(), source, seasonExternalID, parseIncludePBP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// TriggerGameSync handles POST /sync/{source}/game/{game_external_id}.
func (h *Handler) TriggerGameSync(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	gameExternalID := chi.URLParam(r, "game_external_id")

	if _, ok, detail := h.resolveSource(source); !ok {
		writeErrorDetail(w, http.StatusBadRequest, detail)
		return
	}

	entry, err := h.orchestrator.SyncGame(r.Context(), source, gameExternalID, parseIncludePBP(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// TriggerTeamsSync handles POST /sync/{source}/teams/{season_external_id}.
func (h *Handler) TriggerTeamsSync(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	seasonExternalID := chi.URLParam(r, "season_external_id")

	if _, ok, detail := h.resolveSource(source); !ok {
		writeErrorDetail(w, http.StatusBadRequest, detail)
		return
	}

	entry, err := h.orchestrator.SyncTeams(r.Context(), source, seasonExternalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// sourceStatus is one entry of the GET /sync/status response (spec.md §6).
type sourceStatus struct {
	Name                string          `json:"name"`
	Enabled             bool            `json:"enabled"`
	AutoSyncEnabled     bool            `json:"auto_sync_enabled"`
	SyncIntervalMinutes int             `json:"sync_interval_minutes"`
	RunningSyncs        int             `json:"running_syncs"`
	LatestSeasonSync    *models.SyncLog `json:"latest_season_sync"`
	LatestGameSync      *models.SyncLog `json:"latest_game_sync"`
}

// SyncStatus handles GET /sync/status: one SourceStatus snapshot per
// configured source (SPEC_FULL §11).
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out := make([]sourceStatus, 0, len(h.cfg.Sources))
	for name, sc := range h.cfg.Sources {
		running, err := h.db.SyncLogs.CountRunning(ctx, name)
		if err != nil {
			writeError(w, err)
			return
		}
		latestSeason, err := h.db.SyncLogs.LatestByEntityType(ctx, name, "season")
		if err != nil {
			writeError(w, err)
			return
		}
		latestGame, err := h.db.SyncLogs.LatestByEntityType(ctx, name, "game")
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, sourceStatus{
			Name:                name,
			Enabled:             sc.Enabled,
			AutoSyncEnabled:     sc.AutoSyncEnabled,
			SyncIntervalMinutes: sc.SyncIntervalMinutes,
			RunningSyncs:        running,
			LatestSeasonSync:    latestSeason,
			LatestGameSync:      latestGame,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// SyncLogs handles GET /sync/logs: a filtered, paginated list of sync logs.
func (h *Handler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := q.Get("source")
	limit, offset := parsePagination(q)

	var status *models.SyncStatus
	if raw := q.Get("status"); raw != "" {
		s := models.SyncStatus(raw)
		status = &s
	}

	items, total, err := h.db.SyncLogs.ListFiltered(r.Context(), source, status, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse(items, total))
}
