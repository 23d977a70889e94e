package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
)

// Reason classifies a rejection for logging. It is never sent to clients.
type Reason string

const (
	ReasonContentType  Reason = "content_type"
	ReasonOrigin       Reason = "origin"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonUserAgent    Reason = "user_agent"
	ReasonMalformed    Reason = "malformed_json"
	ReasonTooLarge     Reason = "too_large"
	ReasonCSRF         Reason = "csrf"
	ReasonValidation   Reason = "validation"
	ReasonHoneypot     Reason = "honeypot"
	ReasonBusinessRule Reason = "business_rule"
	ReasonInternal     Reason = "internal"
)

// PipelineError is a terminal rejection of a submission.
type PipelineError struct {
	Status     int
	Message    string
	Details    forms.FieldErrors
	RetryAfter time.Duration
	Reason     Reason
	Err        error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Reason, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Reason, e.Status, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func reject(status int, reason Reason, message string) *PipelineError {
	return &PipelineError{Status: status, Reason: reason, Message: message}
}

func internalError(err error) *PipelineError {
	return &PipelineError{
		Status:  http.StatusInternalServerError,
		Reason:  ReasonInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
