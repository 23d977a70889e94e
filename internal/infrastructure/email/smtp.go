package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// implicitTLSPort is the SMTPS port; other ports upgrade with STARTTLS.
const implicitTLSPort = 465

// SMTPConfig holds SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLSConfig overrides the default client TLS settings.
	TLSConfig *tls.Config
	// PlainText disables STARTTLS. Local relays only.
	PlainText bool
}

// SMTPNotifier delivers mail over SMTP with PLAIN authentication.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("EMAIL_HOST is required for the smtp provider")
	}
	if cfg.Port == 0 {
		cfg.Port = implicitTLSPort
	}
	return &SMTPNotifier{cfg: cfg}, nil
}

func (n *SMTPNotifier) Name() string { return ProviderSMTP }

// clientOptions maps the config onto go-mail options. The dial timeout
// follows the context deadline when one is set.
func (n *SMTPNotifier) clientOptions(ctx context.Context) []mail.Option {
	opts := []mail.Option{mail.WithPort(n.cfg.Port)}

	switch {
	case n.cfg.Port == implicitTLSPort:
		opts = append(opts, mail.WithSSLPort(false))
	case n.cfg.PlainText:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if n.cfg.TLSConfig != nil {
		opts = append(opts, mail.WithTLSConfig(n.cfg.TLSConfig))
	}

	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			opts = append(opts, mail.WithTimeout(remaining))
		}
	}

	return opts
}

func buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	m.Subject(msg.Subject)
	m.SetDate()

	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}

	return m, nil
}

// Send runs one SMTP session bounded by ctx.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("smtp: no recipients")
	}

	m, err := buildMessage(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Host, n.clientOptions(ctx)...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
