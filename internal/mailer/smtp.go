package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/pkg/logger"
)

const defaultDialTimeout = 30 * time.Second

// SMTPSender submits mail to an SMTP relay such as Gmail or a hosted provider.
type SMTPSender struct {
	host     string
	port     int
	secure   bool
	username string
	password string
	from     Address
	now      func() time.Time
	log      *logger.Logger
}

// NewSMTPSender creates an SMTP sender. With cfg.Secure the connection uses
// implicit TLS; otherwise STARTTLS is negotiated when the server offers it.
func NewSMTPSender(cfg config.SMTPConfig, from Address) *SMTPSender {
	return &SMTPSender{
		host:     cfg.Host,
		port:     cfg.Port,
		secure:   cfg.Secure,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		now:      time.Now,
		log:      logger.With("component", "mailer", "provider", "smtp"),
	}
}

// Send delivers msg. The context deadline bounds dial and every later
// read or write on the connection.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if s.host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	messageID := fmt.Sprintf("%s@%s", uuid.New().String(), s.host)
	body, err := buildMIME(s.from, msg, messageID, s.now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	if err := s.sendSMTP(ctx, addr, msg.To, body); err != nil {
		return fmt.Errorf("SMTP send failed: %w", err)
	}

	s.log.Info("email sent", "recipient", strings.Join(msg.To, ","), "message_id", messageID)
	return nil
}

func (s *SMTPSender) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: defaultDialTimeout}
	if s.secure {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.host}}
		return tlsDialer.DialContext(ctx, "tcp", addr)
	}
	return dialer.DialContext(ctx, "tcp", addr)
}

// sendSMTP performs the SMTP transaction: greeting, optional STARTTLS,
// AUTH PLAIN when credentials are set, then one envelope for all recipients.
func (s *SMTPSender) sendSMTP(ctx context.Context, addr string, to []string, msg []byte) error {
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer c.Close()

	if !s.secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("STARTTLS: %w", err)
			}
		}
	}
	if s.username != "" && s.password != "" {
		if err := c.Auth(smtp.PlainAuth("", s.username, s.password, s.host)); err != nil {
			return fmt.Errorf("AUTH: %w", err)
		}
	}

	if err := c.Mail(s.from.Email); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO: %w", err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("DATA close: %w", err)
	}
	return c.Quit()
}

// buildMIME renders msg as a multipart/alternative message with
// quoted-printable text and HTML parts. Addresses containing CR or LF are
// rejected.
func buildMIME(from Address, msg Message, messageID string, now time.Time) ([]byte, error) {
	for _, to := range msg.To {
		if err := checkHeaderValue("To", to); err != nil {
			return nil, err
		}
	}
	if err := checkHeaderValue("Reply-To", msg.ReplyTo); err != nil {
		return nil, err
	}
	if err := checkHeaderValue("From", from.Email); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	fromHeader := from.Email
	if from.Name != "" {
		fromHeader = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", from.Name), from.Email)
	}
	fmt.Fprintf(&buf, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s>\r\n", messageID)
	buf.WriteString("MIME-Version: 1.0\r\n")
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", msg.ReplyTo)
	}

	boundary := fmt.Sprintf("=_%s", uuid.New().String()[:16])
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	if msg.Text != "" {
		writePart(&buf, boundary, "text/plain", msg.Text)
	}
	if msg.HTML != "" {
		writePart(&buf, boundary, "text/html", msg.HTML)
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

func writePart(buf *bytes.Buffer, boundary, contentType, content string) {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	fmt.Fprintf(buf, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	qp := quotedprintable.NewWriter(buf)
	_, _ = qp.Write([]byte(content))
	_ = qp.Close()
	buf.WriteString("\r\n")
}
