package handlers

import (
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/cinelog-io/cinelog-engine/pkg/config"
)

// PingResponse reports service identity, version and uptime.
type PingResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	GoVersion     string `json:"go_version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthHandler serves liveness and identity endpoints.
type HealthHandler struct {
	cfg       *config.Config
	logger    *zap.Logger
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler with the given configuration.
func NewHealthHandler(cfg *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, logger: logger, startedAt: time.Now()}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests with version and uptime detail.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	response := PingResponse{
		Status:        "ok",
		Service:       "cinelog-engine",
		Version:       h.cfg.Version,
		Environment:   h.cfg.Env,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
