// Package email delivers lead notifications to the sales inbox.
package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/domain/forms"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/email/templates"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
)

// Provider names accepted by New.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderLog    = "log"
)

// Message is a fully rendered email.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Notifier delivers a Message. Implementations must honour ctx cancellation.
type Notifier interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Envelope holds the fixed sender and recipients of lead notifications.
type Envelope struct {
	From     string
	To       []string
	Location *time.Location
}

// ComposeLead renders a validated record into a Message.
func ComposeLead(env Envelope, record forms.Record, submissionID string, at time.Time) (Message, error) {
	if len(env.To) == 0 {
		return Message{}, errors.New("no notification recipients configured")
	}
	if env.Location != nil {
		at = at.In(env.Location)
	}

	lead, err := templates.Render(record, submissionID, at)
	if err != nil {
		return Message{}, fmt.Errorf("failed to render lead: %w", err)
	}

	return Message{
		From:    env.From,
		To:      env.To,
		ReplyTo: record.ContactEmail(),
		Subject: lead.Subject,
		Text:    lead.Text,
		HTML:    lead.HTML,
	}, nil
}

// Config selects and configures a provider.
type Config struct {
	Provider     string
	SMTP         SMTPConfig
	ResendAPIKey string
}

// New builds the configured notifier. Without credentials it falls back to
// the log notifier so a development setup still accepts leads.
func New(cfg Config, logger *logging.ChanneledLogger) (Notifier, error) {
	switch cfg.Provider {
	case ProviderLog:
		return NewLogNotifier(logger), nil

	case ProviderResend:
		if cfg.ResendAPIKey == "" {
			logger.Notification().Warn("RESEND_API_KEY not set, logging notifications instead")
			return NewLogNotifier(logger), nil
		}
		return NewResendNotifier(cfg.ResendAPIKey)

	case "", ProviderSMTP:
		if cfg.SMTP.Username == "" || cfg.SMTP.Password == "" {
			logger.Notification().Warn("SMTP credentials not set, logging notifications instead")
			return NewLogNotifier(logger), nil
		}
		return NewSMTPNotifier(cfg.SMTP)

	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
