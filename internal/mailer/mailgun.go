package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/pkg/logger"
)

// MailgunSender sends email via the Mailgun Messages API.
type MailgunSender struct {
	apiKey string
	from   Address
	client *mailgun.MailgunImpl
	log    *logger.Logger
}

// NewMailgunSender creates a Mailgun sender targeting cfg.Domain.
// cfg.BaseURL overrides the API base, e.g. for the EU region.
func NewMailgunSender(cfg config.MailgunConfig, from Address) *MailgunSender {
	client := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		client.SetAPIBase(base)
	}
	return &MailgunSender{
		apiKey: cfg.APIKey,
		from:   from,
		client: client,
		log:    logger.With("component", "mailer", "provider", "mailgun"),
	}
}

// Send delivers msg with one API call; all recipients share the message.
func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	if s.apiKey == "" {
		return fmt.Errorf("Mailgun API key not configured")
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	m := s.client.NewMessage(s.from.String(), msg.Subject, msg.Text, msg.To...)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}
	if msg.ReplyTo != "" {
		m.AddHeader("Reply-To", msg.ReplyTo)
	}

	_, id, err := s.client.Send(ctx, m)
	if err != nil {
		return fmt.Errorf("Mailgun send failed: %w", err)
	}

	s.log.Info("email sent", "recipient", msg.To[0], "message_id", strings.Trim(id, "<>"))
	return nil
}
