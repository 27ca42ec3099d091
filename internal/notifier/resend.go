package notifier

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/menofiaacademy/academy-site/internal/logger"
	"github.com/menofiaacademy/academy-site/internal/registration"
)

// ResendNotifier e-mails registrations to the academy inbox via the Resend API
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     []string
}

// NewResendNotifier creates a Resend notifier.
// apiKey, from and at least one recipient are required.
func NewResendNotifier(apiKey, from string, to []string) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Resend API key")
	}
	if from == "" || len(to) == 0 {
		return nil, fmt.Errorf("missing notification sender or recipients")
	}

	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}, nil
}

// Notify sends one e-mail for the registration
func (n *ResendNotifier) Notify(ctx context.Context, data registration.Data) error {
	msg := formatMessage(data)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		logger.IncrCounter("notify.failed")
		return fmt.Errorf("failed to send notification for %s: %w", data.CourseTitle, err)
	}

	logger.IncrCounter("notify.sent")
	logger.Info("Registration notification sent", logger.Fields{
		"message_id": sent.Id,
		"course":     data.CourseTitle,
	})
	return nil
}
