package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resendlabs/resend-go"
)

type resendSender interface {
	Send(params *resend.SendEmailRequest) (resend.SendEmailResponse, error)
}

// ResendNotifier sends through the Resend API.
type ResendNotifier struct {
	emails resendSender
}

// NewResendNotifier creates a notifier for apiKey.
func NewResendNotifier(apiKey string) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("RESEND_API_KEY is required for the resend provider")
	}
	return &ResendNotifier{emails: resend.NewClient(apiKey).Emails}, nil
}

func (n *ResendNotifier) Name() string { return ProviderResend }

// Send gives up when ctx is done. The API call itself cannot be cancelled
// and finishes in the background.
func (n *ResendNotifier) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	done := make(chan error, 1)
	go func() {
		_, err := n.emails.Send(params)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send lead email via Resend: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("resend delivery abandoned: %w", ctx.Err())
	}
}
