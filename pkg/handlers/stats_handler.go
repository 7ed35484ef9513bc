package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/models"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
)

// RunListResponse for GET /api/runs.
type RunListResponse struct {
	Runs  []*models.SyncRun `json:"runs"`
	Total int               `json:"total"`
}

// StatsHandler serves catalogue counts and the sync run ledger.
type StatsHandler struct {
	statsService services.StatsService
	logger       *zap.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsService services.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// RegisterRoutes registers the stats handler's routes on the given mux.
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stats", h.Stats)
	mux.HandleFunc("GET /api/runs", h.ListRuns)
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.CatalogueStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to read catalogue stats", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "stats_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, stats); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListRuns handles GET /api/runs. The optional limit query parameter
// caps how many runs are returned (default 50).
func (h *StatsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	runs, err := h.statsService.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list sync runs", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_runs_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := RunListResponse{
		Runs:  runs,
		Total: len(runs),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
