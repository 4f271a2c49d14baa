package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// StorageChecker is the part of the project store the health check uses.
type StorageChecker interface {
	Backend() string
	Ping(ctx context.Context) error
}

type StorageStatus struct {
	Backend string `json:"backend"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Storage   StorageStatus `json:"storage"`
}

type HealthHandler struct {
	serviceName string
	version     string
	storage     StorageChecker
}

func NewHealthHandler(serviceName, version string, storage StorageChecker) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		storage:     storage,
	}
}

// HealthCheck always answers 200 while the process is up; a failing store
// shows up as storage.status "down".
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storage := StorageStatus{Status: "disabled"}
	if h.storage != nil {
		storage.Backend = h.storage.Backend()

		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.storage.Ping(pingCtx); err != nil {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("backend", storage.Backend).Msg("storage ping failed")
			storage.Status = "down"
		} else {
			storage.Status = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Storage:   storage,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
