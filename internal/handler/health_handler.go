package handler

import (
	"context"
	"time"

	"microlearn/internal/domain"
	"microlearn/internal/dto"
	"microlearn/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	ServiceName    = "microlearn"
	ServiceVersion = "2.0.0"
)

// HealthHandler reports liveness and the state of optional dependencies
type HealthHandler struct {
	cache domain.Cache
}

// NewHealthHandler creates a HealthHandler. cache may be nil when Redis is not configured.
func NewHealthHandler(cache domain.Cache) *HealthHandler {
	return &HealthHandler{cache: cache}
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: ServiceVersion,
	}
	if h.cache == nil {
		return c.JSON(resp)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	resp.Checks = map[string]string{"redis": "ok"}
	if err := h.cache.Ping(ctx); err != nil {
		logger.Get().Warn("Health check: redis ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Checks["redis"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
