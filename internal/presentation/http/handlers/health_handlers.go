package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/application/services"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
)

// HealthHandlers reports liveness and store reachability.
type HealthHandlers struct {
	healthService *services.HealthService
	logger        *logging.ChanneledLogger
}

func NewHealthHandlers(healthService *services.HealthService, logger *logging.ChanneledLogger) *HealthHandlers {
	return &HealthHandlers{healthService: healthService, logger: logger}
}

// GetHealth handles GET /api/health
func (h *HealthHandlers) GetHealth(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())
	if !report.Healthy() {
		h.logger.System().Warn("Health check degraded", "store", report.Store, "error", report.StoreError)
		c.JSON(http.StatusServiceUnavailable, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
