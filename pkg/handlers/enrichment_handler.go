package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/apperrors"
	"github.com/cinelog-io/cinelog-engine/pkg/services"
)

// EnrichmentHandler handles enrichment sync HTTP requests.
type EnrichmentHandler struct {
	enrichmentService services.EnrichmentService
	logger            *zap.Logger
}

// NewEnrichmentHandler creates a new enrichment handler.
func NewEnrichmentHandler(enrichmentService services.EnrichmentService, logger *zap.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
		logger:            logger,
	}
}

// RegisterRoutes registers the enrichment handler's routes on the given mux.
func (h *EnrichmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/enrichment/sync", h.RunSync)
	mux.HandleFunc("POST /api/enrichment/films/{filmID}", h.EnrichFilm)
	mux.HandleFunc("GET /api/enrichment/status", h.Status)
}

// RunSync handles POST /api/enrichment/sync.
// Query parameters: limit caps the number of films processed (0 means
// all), force re-fetches films that already have enrichment data.
func (h *EnrichmentHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}
	force := r.URL.Query().Get("force") == "true"

	result, err := h.enrichmentService.RunEnrichmentSync(r.Context(), limit, force)
	if err != nil {
		h.writeEnrichmentError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// EnrichFilm handles POST /api/enrichment/films/{filmID}.
func (h *EnrichmentHandler) EnrichFilm(w http.ResponseWriter, r *http.Request) {
	filmID, err := uuid.Parse(r.PathValue("filmID"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_film_id", "Invalid film ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	force := r.URL.Query().Get("force") == "true"

	result, err := h.enrichmentService.EnrichSingle(r.Context(), filmID, force)
	if err != nil {
		h.writeEnrichmentError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Status handles GET /api/enrichment/status.
func (h *EnrichmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.enrichmentService.Status(r.Context())
	if err != nil {
		h.logger.Error("Failed to read enrichment status", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "status_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, status); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeEnrichmentError maps enrichment service errors to HTTP statuses.
func (h *EnrichmentHandler) writeEnrichmentError(w http.ResponseWriter, err error) {
	var (
		status  int
		code    string
		message string
	)

	switch {
	case errors.Is(err, apperrors.ErrNotConfigured):
		status, code, message = http.StatusServiceUnavailable, "enrichment_not_configured", "Enrichment source API key is not configured"
	case errors.Is(err, apperrors.ErrSyncInProgress):
		status, code, message = http.StatusConflict, "sync_in_progress", "An enrichment run is already in progress"
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "film_not_found", "No film with that ID"
	case errors.Is(err, apperrors.ErrMissingExternalID):
		status, code, message = http.StatusBadRequest, "missing_source_id", "Film has no enrichment source ID"
	default:
		h.logger.Error("Enrichment request failed", zap.Error(err))
		status, code, message = http.StatusInternalServerError, "enrichment_failed", err.Error()
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
