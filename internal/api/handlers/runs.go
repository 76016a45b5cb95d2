package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/fairvalue/internal/store"
	"github.com/wonny/fairvalue/pkg/logger"
)

// RunsHandler serves persisted batch run history.
type RunsHandler struct {
	store  *store.Store // nil when persistence is disabled
	logger *logger.Logger
}

// NewRunsHandler creates a runs handler.
func NewRunsHandler(st *store.Store, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		store:  st,
		logger: log,
	}
}

// ListRuns returns recent batch runs.
// GET /api/batch/runs?limit=20
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "run history requires a configured database")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	runs, err := h.store.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list batch runs")
		respondError(w, http.StatusInternalServerError, "failed to list batch runs")
		return
	}

	if runs == nil {
		runs = []store.RunSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// GetRun returns the outcomes of one run.
// GET /api/batch/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotFound, "run history requires a configured database")
		return
	}

	runID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "run id must be an integer")
		return
	}

	outcomes, err := h.store.RunOutcomes(r.Context(), runID)
	if err != nil {
		h.logger.WithError(err).WithField("run_id", runID).Error("Failed to load run outcomes")
		respondError(w, http.StatusInternalServerError, "failed to load run outcomes")
		return
	}

	if len(outcomes) == 0 {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   runID,
		"outcomes": outcomes,
	})
}
