package email

import (
	"context"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
)

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	logger *logging.ChanneledLogger
}

func NewLogNotifier(logger *logging.ChanneledLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return ProviderLog }

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Notification().Info("Lead notification",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}
