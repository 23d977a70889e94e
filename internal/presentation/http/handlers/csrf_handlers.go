// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/application/services"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/middleware"
)

// CSRFHandlers hands out anti-forgery tokens to the lead forms.
type CSRFHandlers struct {
	submissionService *services.SubmissionService
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewCSRFHandlers creates CSRF handlers with injected dependencies
func NewCSRFHandlers(submissionService *services.SubmissionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CSRFHandlers {
	return &CSRFHandlers{
		submissionService: submissionService,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// GetToken handles GET /api/csrf
func (h *CSRFHandlers) GetToken(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_csrf_token_request")
	defer marker.Complete()

	clientIP := middleware.GetClientIP(c)
	token, err := h.submissionService.IssueToken(c.Request.Context(), clientIP, c.Request.UserAgent())
	if err != nil {
		marker.SetError(err)
		h.logger.LogError(logging.ChannelSecurity, "csrf_issue", err, map[string]any{
			"ip":        logging.MaskSessionID(clientIP),
			"requestId": middleware.GetRequestID(c),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate CSRF token"})
		return
	}

	marker.SetSuccess(true)
	h.logger.Security().Debug("CSRF token issued", "ip", logging.MaskSessionID(clientIP))
	c.JSON(http.StatusOK, gin.H{"csrfToken": token})
}
