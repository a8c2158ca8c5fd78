package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"myxpicks/internal/services"
)

// HealthServiceInterface is the part of the health service the handler uses.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	Version() services.VersionInfo
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service HealthServiceInterface
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health. A degraded service still answers 200
// so the page keeps loading while no snapshot exists.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
