package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidea/website-api/internal/domain"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(ctx context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func testSubmission() *domain.ContactSubmission {
	return &domain.ContactSubmission{
		ID:        42,
		Name:      "Dana <script>",
		Email:     "dana@gmail.com",
		Phone:     "+972 542327876",
		Company:   "Acme",
		Message:   "We need a new site.\nSoon.",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newTestNotifier(t *testing.T, sender Sender, admins ...string) *Notifier {
	t.Helper()
	n, err := NewNotifier(sender, NotifierConfig{
		PublicBaseURL:   "https://aidea.co.il/",
		AdminRecipients: admins,
		ReplyTo:         "team@aidea.co.il",
	})
	require.NoError(t, err)
	return n
}

func TestNotifier_SendConfirmation(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender)

	require.NoError(t, n.SendConfirmation(context.Background(), testSubmission()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"dana@gmail.com"}, msg.To)
	assert.Equal(t, "team@aidea.co.il", msg.ReplyTo)
	assert.Equal(t, "Thanks for reaching out to AIDEA", msg.Subject)
	assert.Contains(t, msg.HTML, "Dana &lt;script&gt;")
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "https://aidea.co.il/projects")
	assert.Contains(t, msg.HTML, "Reference #42")
	assert.Contains(t, msg.Text, "We need a new site.\nSoon.")
}

func TestNotifier_SendAdminNotification(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender, "ops@aidea.co.il", "sales@aidea.co.il")

	require.NoError(t, n.SendAdminNotification(context.Background(), testSubmission()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"ops@aidea.co.il", "sales@aidea.co.il"}, msg.To)
	assert.Equal(t, "dana@gmail.com", msg.ReplyTo)
	assert.Equal(t, "New contact submission from Dana <script> (Acme)", msg.Subject)
	assert.Contains(t, msg.Text, "Phone:    +972 542327876")
	assert.Contains(t, msg.Text, "Company:  Acme")
	assert.NotContains(t, msg.Text, "Budget:")
	assert.Contains(t, msg.Text, "Received: Sun, 01 Mar 2026 10:00:00 UTC")
	assert.Contains(t, msg.HTML, "mailto:dana@gmail.com")
	assert.Contains(t, msg.HTML, `href="tel:+972542327876"`)
}

func TestNotifier_AdminPhoneWithoutDialCodeIsNotLinked(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender, "ops@aidea.co.il")

	sub := testSubmission()
	sub.Phone = "054-232-7876"
	require.NoError(t, n.SendAdminNotification(context.Background(), sub))

	msg := sender.sent[0]
	assert.NotContains(t, msg.HTML, "tel:")
	assert.Contains(t, msg.HTML, "054-232-7876")
}

func TestNotifier_AdminWithoutRecipientsFails(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender)

	err := n.SendAdminNotification(context.Background(), testSubmission())
	assert.ErrorIs(t, err, ErrNoAdminRecipients)
	assert.Empty(t, sender.sent)
}

func TestNotifier_PropagatesSenderError(t *testing.T) {
	boom := errors.New("smtp: 535 authentication failed")
	n := newTestNotifier(t, &recordingSender{err: boom}, "ops@aidea.co.il")

	assert.ErrorIs(t, n.SendConfirmation(context.Background(), testSubmission()), boom)
	assert.ErrorIs(t, n.SendAdminNotification(context.Background(), testSubmission()), boom)
}

func TestNotifier_OptionalFieldsOmitted(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender, "ops@aidea.co.il")

	sub := testSubmission()
	sub.Company = ""
	sub.Budget = "10k-25k"
	require.NoError(t, n.SendAdminNotification(context.Background(), sub))

	msg := sender.sent[0]
	assert.Equal(t, "New contact submission from Dana <script>", msg.Subject)
	assert.NotContains(t, msg.Text, "Company:")
	assert.Contains(t, msg.Text, "Budget:   10k-25k")
}

func TestNewNotifier_RequiresSender(t *testing.T) {
	_, err := NewNotifier(nil, NotifierConfig{})
	assert.Error(t, err)
}

func TestNotifier_AdminReplyToSkipsUnparsableEmail(t *testing.T) {
	sender := &recordingSender{}
	n := newTestNotifier(t, sender, "ops@aidea.co.il")

	sub := testSubmission()
	sub.Email = "a@gmail.com\r\nBcc: victim@evil.test\r\nX-Injected: yes"
	require.NoError(t, n.SendAdminNotification(context.Background(), sub))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Empty(t, msg.ReplyTo)

	body, err := buildMIME(Address{Email: "hello@aidea.co.il"}, msg, "id@localhost", time.Now())
	require.NoError(t, err)
	headers, _, _ := strings.Cut(string(body), "\r\n\r\n")
	assert.NotContains(t, headers, "Bcc:")
	assert.NotContains(t, headers, "X-Injected:")
}
