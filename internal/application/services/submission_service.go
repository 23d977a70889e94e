package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
	"github.com/turbokuzmich/yourcosmetics/internal/domain/identity"
	"github.com/turbokuzmich/yourcosmetics/internal/domain/submissions"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/email"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/security"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

// RateLimiter admits or rejects a request for a client key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Window() time.Duration
}

// TokenStore issues and verifies CSRF tokens per session key.
type TokenStore interface {
	Issue(ctx context.Context, sessionKey string) (string, error)
	Verify(ctx context.Context, sessionKey, token string) bool
}

// FormDefinition binds a schema to its identifier prefix and success text.
type FormDefinition struct {
	Schema         forms.SchemaID
	Prefix         string
	SuccessMessage string
}

var (
	BriefForm = FormDefinition{
		Schema:         forms.SchemaBrief,
		Prefix:         submissions.PrefixBrief,
		SuccessMessage: "Бриф успешно отправлен!",
	}
	ConsultationForm = FormDefinition{
		Schema:         forms.SchemaConsultation,
		Prefix:         submissions.PrefixConsultation,
		SuccessMessage: "Заявка на консультацию успешно отправлена!",
	}
)

// SubmissionRequest carries the request metadata the pipeline inspects.
type SubmissionRequest struct {
	ContentType string
	Origin      string
	Referer     string
	UserAgent   string
	ClientIP    string
	Body        io.Reader
}

// SubmissionResult is returned for an accepted submission.
type SubmissionResult struct {
	SubmissionID string `json:"submissionId"`
	Message      string `json:"message"`
}

// SubmissionConfig holds the pipeline limits.
type SubmissionConfig struct {
	AllowedOrigins     []string
	MaxBodyChars       int
	MaxBodyBytes       int64
	MinUserAgentLength int
	NotifyTimeout      time.Duration
	Envelope           email.Envelope
	Clock              storage.Clock
}

// SubmissionService runs inbound lead forms through the security checks and
// hands accepted ones to the notifier.
type SubmissionService struct {
	limiter     RateLimiter
	tokens      TokenStore
	sanitizer   *security.Sanitizer
	validator   *forms.Validator
	notifier    email.Notifier
	cfg         SubmissionConfig
	origins     map[string]struct{}
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSubmissionService wires the pipeline.
func NewSubmissionService(
	limiter RateLimiter,
	tokens TokenStore,
	sanitizer *security.Sanitizer,
	validator *forms.Validator,
	notifier email.Notifier,
	cfg SubmissionConfig,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *SubmissionService {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if n := identity.NormalizeOrigin(o); n != "" {
			origins[n] = struct{}{}
		}
	}

	return &SubmissionService{
		limiter:     limiter,
		tokens:      tokens,
		sanitizer:   sanitizer,
		validator:   validator,
		notifier:    notifier,
		cfg:         cfg,
		origins:     origins,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// IssueToken hands out a CSRF token for the client's session identity.
func (s *SubmissionService) IssueToken(ctx context.Context, clientIP, userAgent string) (string, error) {
	marker := s.perfTracker.StartOperation("csrf:issue")
	defer marker.Complete()

	token, err := s.tokens.Issue(ctx, identity.SessionKey(clientIP, userAgent))
	if err != nil {
		marker.SetError(err)
		return "", err
	}

	marker.SetSuccess(true)
	return token, nil
}

// Submit runs every check in order and stops at the first failure. Failures
// are returned as *PipelineError.
func (s *SubmissionService) Submit(ctx context.Context, form FormDefinition, req SubmissionRequest) (*SubmissionResult, error) {
	marker := s.perfTracker.StartOperation("submission:" + string(form.Schema))
	defer marker.Complete()

	result, perr := s.run(ctx, form, req)
	if perr != nil {
		marker.SetSuccess(false)
		marker.AddMetadata("reason", string(perr.Reason))
		s.logRejection(form, req, perr)
		return nil, perr
	}

	marker.SetSuccess(true)
	return result, nil
}

func (s *SubmissionService) run(ctx context.Context, form FormDefinition, req SubmissionRequest) (*SubmissionResult, *PipelineError) {
	if !strings.Contains(strings.ToLower(req.ContentType), "application/json") {
		return nil, reject(http.StatusBadRequest, ReasonContentType, "Invalid content type")
	}

	if !s.originAllowed(req.Origin) && !s.originAllowed(req.Referer) {
		return nil, reject(http.StatusForbidden, ReasonOrigin, "Invalid origin")
	}

	allowed, err := s.limiter.Allow(ctx, req.ClientIP)
	if err != nil {
		return nil, internalError(err)
	}
	if !allowed {
		perr := reject(http.StatusTooManyRequests, ReasonRateLimited, "Too many requests. Please try again later.")
		perr.RetryAfter = s.limiter.Window()
		return nil, perr
	}

	if utf8.RuneCountInString(req.UserAgent) < s.cfg.MinUserAgentLength {
		return nil, reject(http.StatusBadRequest, ReasonUserAgent, "Invalid user agent")
	}

	body, perr := s.readBody(req.Body)
	if perr != nil {
		return nil, perr
	}

	fields, _ := body.(map[string]any)
	token, _ := fields["csrfToken"].(string)
	if token == "" || !s.tokens.Verify(ctx, identity.SessionKey(req.ClientIP, req.UserAgent), token) {
		return nil, reject(http.StatusForbidden, ReasonCSRF, "Invalid CSRF token")
	}

	record, err := s.validator.Validate(form.Schema, s.sanitizer.Value(body))
	if err != nil {
		var fieldErrs forms.FieldErrors
		if !errors.As(err, &fieldErrs) {
			return nil, internalError(err)
		}
		perr := reject(http.StatusBadRequest, ReasonValidation, "Validation failed")
		perr.Details = fieldErrs
		if fieldErrs.Has("honeypot") {
			perr.Reason = ReasonHoneypot
		}
		return nil, perr
	}

	if brief, ok := record.(*forms.BriefSubmission); ok && len(brief.Products) > forms.MaxProducts {
		return nil, reject(http.StatusBadRequest, ReasonBusinessRule, "Too many products")
	}

	now := s.cfg.Clock.Now()
	submissionID, err := submissions.NewID(form.Prefix, now)
	if err != nil {
		return nil, internalError(err)
	}

	s.logAccepted(form, req, record, submissionID)
	s.notify(ctx, record, submissionID, now)

	return &SubmissionResult{SubmissionID: submissionID, Message: form.SuccessMessage}, nil
}

// readBody enforces the byte cap, parses JSON and applies the serialized
// length ceiling.
func (s *SubmissionService) readBody(r io.Reader) (any, *PipelineError) {
	if r == nil {
		return nil, reject(http.StatusBadRequest, ReasonMalformed, "Invalid JSON")
	}

	raw, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBodyBytes+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, reject(http.StatusRequestEntityTooLarge, ReasonTooLarge, "Request too large")
		}
		return nil, reject(http.StatusBadRequest, ReasonMalformed, "Invalid JSON")
	}
	if int64(len(raw)) > s.cfg.MaxBodyBytes {
		return nil, reject(http.StatusRequestEntityTooLarge, ReasonTooLarge, "Request too large")
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, reject(http.StatusBadRequest, ReasonMalformed, "Invalid JSON")
	}

	size, err := serializedLength(body)
	if err != nil {
		return nil, internalError(err)
	}
	if size > s.cfg.MaxBodyChars {
		return nil, reject(http.StatusRequestEntityTooLarge, ReasonTooLarge, "Request too large")
	}

	return body, nil
}

// serializedLength measures the compact JSON form in characters.
func serializedLength(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return 0, fmt.Errorf("failed to re-encode body: %w", err)
	}
	return utf8.RuneCount(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func (s *SubmissionService) notify(ctx context.Context, record forms.Record, submissionID string, at time.Time) {
	log := s.logger.Notification().With("submissionId", submissionID, "provider", s.notifier.Name())

	msg, err := email.ComposeLead(s.cfg.Envelope, record, submissionID, at)
	if err != nil {
		log.Error("Failed to compose lead notification", "error", err.Error())
		return
	}

	// The submitter disconnecting must not abort delivery of an accepted lead.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	start := time.Now()
	if err := s.notifier.Send(sendCtx, msg); err != nil {
		log.Error("Failed to send email notification", "error", err.Error(), "duration", time.Since(start))
		return
	}
	log.Info("Email notification sent", "duration", time.Since(start))
}

func (s *SubmissionService) originAllowed(value string) bool {
	origin := identity.NormalizeOrigin(value)
	if origin == "" {
		return false
	}
	_, ok := s.origins[origin]
	return ok
}

func (s *SubmissionService) logRejection(form FormDefinition, req SubmissionRequest, perr *PipelineError) {
	attrs := []any{
		"form", string(form.Schema),
		"reason", string(perr.Reason),
		"status", perr.Status,
		"ip", logging.MaskSessionID(req.ClientIP),
		"userAgent", logging.Truncate(req.UserAgent, 100),
	}

	switch perr.Reason {
	case ReasonInternal:
		s.logger.Submission().Error("Submission failed", append(attrs, "error", fmt.Sprint(perr.Err))...)
	case ReasonValidation, ReasonBusinessRule, ReasonMalformed, ReasonContentType:
		s.logger.Submission().Info("Submission rejected", append(attrs, "fields", len(perr.Details))...)
	default:
		s.logger.Security().Warn("Submission blocked", attrs...)
	}
}

func (s *SubmissionService) logAccepted(form FormDefinition, req SubmissionRequest, record forms.Record, submissionID string) {
	attrs := []any{
		"form", string(form.Schema),
		"submissionId", submissionID,
		"ip", logging.MaskSessionID(req.ClientIP),
		"userAgent", logging.Truncate(req.UserAgent, 100),
	}
	if brief, ok := record.(*forms.BriefSubmission); ok {
		attrs = append(attrs, "productsCount", len(brief.Products))
	}
	s.logger.Submission().Info("Form submission received", attrs...)
}
