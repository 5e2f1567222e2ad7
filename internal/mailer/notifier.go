package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aidea/website-api/internal/domain"
)

// ErrNoAdminRecipients is returned by SendAdminNotification when no internal
// addresses are configured.
var ErrNoAdminRecipients = errors.New("mailer: no admin recipients configured")

// NotifierConfig configures the contact emails.
type NotifierConfig struct {
	Brand           string
	PublicBaseURL   string
	AdminRecipients []string
	// ReplyTo is set on the confirmation email. The admin email always
	// replies to the submitter.
	ReplyTo string
}

// Notifier sends the submitter confirmation and the internal alert.
type Notifier struct {
	sender    Sender
	templates *Templates
	cfg       NotifierConfig
}

// NewNotifier creates a notifier that renders the embedded templates.
func NewNotifier(sender Sender, cfg NotifierConfig) (*Notifier, error) {
	if sender == nil {
		return nil, errors.New("mailer: sender is required")
	}
	tpls, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if cfg.Brand == "" {
		cfg.Brand = "AIDEA"
	}
	return &Notifier{sender: sender, templates: tpls, cfg: cfg}, nil
}

// SendConfirmation emails the submitter.
func (n *Notifier) SendConfirmation(ctx context.Context, sub *domain.ContactSubmission) error {
	msg, err := n.templates.Confirmation(sub, n.cfg.Brand, n.cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	msg.To = []string{sub.Email}
	msg.ReplyTo = n.cfg.ReplyTo
	return n.sender.Send(ctx, msg)
}

// SendAdminNotification emails every configured admin recipient in one message.
func (n *Notifier) SendAdminNotification(ctx context.Context, sub *domain.ContactSubmission) error {
	if len(n.cfg.AdminRecipients) == 0 {
		return ErrNoAdminRecipients
	}
	msg, err := n.templates.AdminNotification(sub, n.cfg.Brand, n.cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("render admin notification: %w", err)
	}
	msg.To = append([]string(nil), n.cfg.AdminRecipients...)
	// Replies go to the submitter only when the stored email parses as a
	// single address.
	if addr, err := mail.ParseAddress(sub.Email); err == nil {
		msg.ReplyTo = addr.Address
	}
	return n.sender.Send(ctx, msg)
}
