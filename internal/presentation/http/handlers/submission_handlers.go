package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turbokuzmich/yourcosmetics/internal/application/services"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
	"github.com/turbokuzmich/yourcosmetics/internal/presentation/http/middleware"
)

// SubmissionHandlers serves the brief and consultation forms.
type SubmissionHandlers struct {
	submissionService *services.SubmissionService
	siteURL           string
	logger            *logging.ChanneledLogger
	perfTracker       *performance.Tracker
}

// NewSubmissionHandlers creates submission handlers with injected dependencies
func NewSubmissionHandlers(submissionService *services.SubmissionService, siteURL string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SubmissionHandlers {
	return &SubmissionHandlers{
		submissionService: submissionService,
		siteURL:           siteURL,
		logger:            logger,
		perfTracker:       perfTracker,
	}
}

// PostBrief handles POST /api/submit-brief
func (h *SubmissionHandlers) PostBrief(c *gin.Context) {
	h.submit(c, services.BriefForm)
}

// PostConsultation handles POST /api/submit-consultation
func (h *SubmissionHandlers) PostConsultation(c *gin.Context) {
	h.submit(c, services.ConsultationForm)
}

// Preflight handles OPTIONS on the submission endpoints
func (h *SubmissionHandlers) Preflight(c *gin.Context) {
	middleware.WritePreflight(c, h.siteURL)
}

func (h *SubmissionHandlers) submit(c *gin.Context, form services.FormDefinition) {
	marker := h.perfTracker.StartOperation("submit_" + string(form.Schema) + "_request")
	defer marker.Complete()

	result, err := h.submissionService.Submit(c.Request.Context(), form, services.SubmissionRequest{
		ContentType: c.GetHeader("Content-Type"),
		Origin:      c.GetHeader("Origin"),
		Referer:     c.GetHeader("Referer"),
		UserAgent:   c.Request.UserAgent(),
		ClientIP:    middleware.GetClientIP(c),
		Body:        c.Request.Body,
	})
	if err != nil {
		marker.SetError(err)
		h.writeError(c, err)
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      result.Message,
		"submissionId": result.SubmissionID,
	})
}

func (h *SubmissionHandlers) writeError(c *gin.Context, err error) {
	var perr *services.PipelineError
	if !errors.As(err, &perr) {
		h.logger.LogError(logging.ChannelSubmission, "submit", err, map[string]any{
			"requestId": middleware.GetRequestID(c),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if perr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(perr.RetryAfter.Seconds())))
	}

	body := gin.H{"error": perr.Message}
	if len(perr.Details) > 0 {
		body["details"] = perr.Details
	}
	c.JSON(perr.Status, body)
}
