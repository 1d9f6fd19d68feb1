package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/sahasajib/invo/internal/config"
)

// ErrDisabled is returned when mail is not configured; the caller surfaces it
// like any other dispatch failure.
var ErrDisabled = errors.New("mailer: disabled")

// Resend sends mail through the Resend API.
type Resend struct {
	client      *resend.Client
	enabled     bool
	fromAddress string
	replyTo     string
}

// NewResend builds the Resend mailer. With mail disabled or no API key the
// mailer is constructed but every Send fails with ErrDisabled.
func NewResend(cfg config.MailConfig) *Resend {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Resend{enabled: false}
	}
	return &Resend{
		client:      resend.NewClient(cfg.APIKey),
		enabled:     true,
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
	}
}

// Send delivers the message with its attachments.
func (m *Resend) Send(ctx context.Context, msg Message) error {
	if !m.enabled {
		return ErrDisabled
	}

	params := &resend.SendEmailRequest{
		From:    m.fromAddress,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if m.replyTo != "" {
		params.ReplyTo = m.replyTo
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
