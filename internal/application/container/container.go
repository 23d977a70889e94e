// Package container provides dependency injection for all singleton services
package container

import (
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/application/services"
	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/email"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/performance"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/ratelimit"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/security"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
	"github.com/turbokuzmich/yourcosmetics/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application Services
	SubmissionService *services.SubmissionService
	HealthService     *services.HealthService

	// Security primitives
	TokenStore *security.TokenStore
	Limiter    *ratelimit.Limiter
	Sanitizer  *security.Sanitizer
	Validator  *forms.Validator

	Settings Settings

	// Infrastructure Dependencies
	Store       storage.Store
	Notifier    email.Notifier
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// Settings are the tunables the container wires into services. DefaultSettings
// reads them from pkg/config.
type Settings struct {
	SiteURL            string
	WebRoot            string
	AllowedOrigins     []string
	TrustProxyHeaders  bool
	CSRFTokenTTL       time.Duration
	CSRFSingleUse      bool
	RateLimitMax       int
	RateLimitWindow    time.Duration
	MaxBodyChars       int
	MaxBodyBytes       int64
	MinUserAgentLength int
	SanitizeMaxChars   int
	NotifyTimeout      time.Duration
	Envelope           email.Envelope
	Clock              storage.Clock
}

// DefaultSettings snapshots the environment-driven configuration.
func DefaultSettings() Settings {
	location, err := time.LoadLocation(config.EmailTimezone)
	if err != nil {
		location = time.UTC
	}

	return Settings{
		SiteURL:            config.SiteURL,
		WebRoot:            config.WebRoot,
		AllowedOrigins:     config.AllowedOrigins,
		TrustProxyHeaders:  config.TrustProxyHeaders,
		CSRFTokenTTL:       config.CSRFTokenTTL,
		CSRFSingleUse:      config.CSRFSingleUse,
		RateLimitMax:       config.RateLimitMax,
		RateLimitWindow:    config.RateLimitWindow,
		MaxBodyChars:       config.MaxBodyChars,
		MaxBodyBytes:       config.MaxBodyBytes,
		MinUserAgentLength: config.MinUserAgentLength,
		SanitizeMaxChars:   config.SanitizeMaxChars,
		NotifyTimeout:      config.NotificationTimeout,
		Envelope: email.Envelope{
			From:     config.EmailFrom,
			To:       config.EmailTo,
			Location: location,
		},
	}
}

// NewContainer creates and wires all singleton services
func NewContainer(settings Settings, store storage.Store, notifier email.Notifier, logger *logging.ChanneledLogger) *Container {
	perfTracker := performance.NewTracker()

	tokens := security.NewTokenStore(store, security.CSRFConfig{
		TTL:       settings.CSRFTokenTTL,
		SingleUse: settings.CSRFSingleUse,
		Clock:     settings.Clock,
	}, logger)
	limiter := ratelimit.NewLimiter(store, ratelimit.Config{
		Max:    settings.RateLimitMax,
		Window: settings.RateLimitWindow,
		Clock:  settings.Clock,
	})
	sanitizer := security.NewSanitizer(settings.SanitizeMaxChars)
	validator := forms.NewValidator()

	submissionService := services.NewSubmissionService(
		limiter,
		tokens,
		sanitizer,
		validator,
		notifier,
		services.SubmissionConfig{
			AllowedOrigins:     settings.AllowedOrigins,
			MaxBodyChars:       settings.MaxBodyChars,
			MaxBodyBytes:       settings.MaxBodyBytes,
			MinUserAgentLength: settings.MinUserAgentLength,
			NotifyTimeout:      settings.NotifyTimeout,
			Envelope:           settings.Envelope,
			Clock:              settings.Clock,
		},
		logger,
		perfTracker,
	)

	return &Container{
		SubmissionService: submissionService,
		HealthService:     services.NewHealthService(store, notifier.Name(), perfTracker),

		TokenStore: tokens,
		Limiter:    limiter,
		Sanitizer:  sanitizer,
		Validator:  validator,

		Settings: settings,

		Store:       store,
		Notifier:    notifier,
		Logger:      logger,
		PerfTracker: perfTracker,
	}
}
