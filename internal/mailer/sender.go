package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/pkg/logger"
)

var (
	// ErrNoRecipients is returned when a message has nobody to go to.
	ErrNoRecipients = errors.New("mailer: no recipients")
	// ErrHeaderInjection is returned when an address carries a line break.
	ErrHeaderInjection = errors.New("mailer: line break in header value")
)

// checkHeaderValue rejects values that would start a new header line.
func checkHeaderValue(name, v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%s: %w", name, ErrHeaderInjection)
	}
	return nil
}

// Message is one rendered email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// New builds the transport selected by cfg.Provider.
func New(ctx context.Context, cfg config.MailConfig) (Sender, error) {
	from := Address{Name: cfg.FromName, Email: cfg.FromEmail}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	if provider != "log" && from.Email == "" {
		return nil, fmt.Errorf("mailer: from_email is required for provider %q", provider)
	}

	switch provider {
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, fmt.Errorf("mailer: smtp host not configured")
		}
		return NewSMTPSender(cfg.SMTP, from), nil
	case "ses":
		return NewSESSender(ctx, cfg.SES, from)
	case "mailgun":
		if cfg.Mailgun.Domain == "" || cfg.Mailgun.APIKey == "" {
			return nil, fmt.Errorf("mailer: mailgun domain and api key are required")
		}
		return NewMailgunSender(cfg.Mailgun, from), nil
	case "log":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender() *LogSender {
	return &LogSender{log: logger.With("component", "mailer", "provider", "log")}
}

// Send logs msg and always succeeds unless msg has no recipients.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("email suppressed (log provider)",
		"recipient", strings.Join(msg.To, ","),
		"subject", msg.Subject,
		"text_bytes", len(msg.Text),
		"html_bytes", len(msg.HTML))
	return nil
}
