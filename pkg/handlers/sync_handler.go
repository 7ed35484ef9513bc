package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
)

// SyncHandler handles primary sync HTTP requests.
type SyncHandler struct {
	syncService services.SyncService
	logger      *zap.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService services.SyncService, logger *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		logger:      logger,
	}
}

// RegisterRoutes registers the sync handler's routes on the given mux.
func (h *SyncHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sync/{username}", h.RunSync)
	mux.HandleFunc("POST /api/films/{slug}/refresh", h.RefreshFilm)
}

// RunSync handles POST /api/sync/{username}.
// The optional fetch_details query parameter (default true) controls
// whether full film pages are fetched for new slugs.
func (h *SyncHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_username", "Username is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	fetchDetails := true
	if raw := r.URL.Query().Get("fetch_details"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_fetch_details", "fetch_details must be a boolean"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		fetchDetails = parsed
	}

	result, err := h.syncService.RunPrimarySync(r.Context(), username, fetchDetails)
	if err != nil {
		if errors.Is(err, apperrors.ErrSyncInProgress) {
			if err := ErrorResponse(w, http.StatusConflict, "sync_in_progress", "A sync for this account is already running"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Primary sync failed",
			zap.String("username", username),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "sync_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RefreshFilm handles POST /api/films/{slug}/refresh.
// Force-refreshes one film's details from the primary source.
func (h *SyncHandler) RefreshFilm(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	film, err := h.syncService.RefreshFilm(r.Context(), slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "film_not_found", "No film with that slug"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Film refresh failed",
			zap.String("slug", slug),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "refresh_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, film); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
