package mailer

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidea/website-api/internal/config"
	"github.com/aidea/website-api/internal/pkg/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MailConfig
		wantErr bool
		check   func(t *testing.T, s Sender)
	}{
		{
			name: "smtp",
			cfg:  config.MailConfig{Provider: "smtp", FromEmail: "hello@aidea.co.il", SMTP: config.SMTPConfig{Host: "smtp.gmail.com", Port: 465, Secure: true}},
			check: func(t *testing.T, s Sender) {
				smtpSender, ok := s.(*SMTPSender)
				require.True(t, ok)
				assert.True(t, smtpSender.secure)
			},
		},
		{
			name:    "smtp without host",
			cfg:     config.MailConfig{Provider: "smtp", FromEmail: "hello@aidea.co.il"},
			wantErr: true,
		},
		{
			name:    "missing from address",
			cfg:     config.MailConfig{Provider: "smtp", SMTP: config.SMTPConfig{Host: "smtp.gmail.com"}},
			wantErr: true,
		},
		{
			name: "mailgun",
			cfg:  config.MailConfig{Provider: "Mailgun", FromEmail: "hello@aidea.co.il", Mailgun: config.MailgunConfig{Domain: "mg.aidea.co.il", APIKey: "key"}},
			check: func(t *testing.T, s Sender) {
				_, ok := s.(*MailgunSender)
				assert.True(t, ok)
			},
		},
		{
			name:    "mailgun without key",
			cfg:     config.MailConfig{Provider: "mailgun", FromEmail: "hello@aidea.co.il", Mailgun: config.MailgunConfig{Domain: "mg.aidea.co.il"}},
			wantErr: true,
		},
		{
			name: "ses",
			cfg:  config.MailConfig{Provider: "ses", FromEmail: "hello@aidea.co.il", SES: config.SESConfig{Region: "us-east-1", AccessKey: "AKIATEST", SecretKey: "secret"}},
			check: func(t *testing.T, s Sender) {
				_, ok := s.(*SESSender)
				assert.True(t, ok)
			},
		},
		{
			name: "log needs no from address",
			cfg:  config.MailConfig{Provider: "log"},
			check: func(t *testing.T, s Sender) {
				_, ok := s.(*LogSender)
				assert.True(t, ok)
			},
		},
		{
			name:    "unknown provider",
			cfg:     config.MailConfig{Provider: "pigeon", FromEmail: "hello@aidea.co.il"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	s := NewLogSender()
	require.NoError(t, s.Send(context.Background(), Message{To: []string{"dana@gmail.com"}, Subject: "Thanks"}))
	assert.Contains(t, buf.String(), "Thanks")
	assert.NotContains(t, buf.String(), "dana@gmail.com")

	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrNoRecipients)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: []string{"dana@gmail.com"}}), context.Canceled)
}

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "hello@aidea.co.il", Address{Email: "hello@aidea.co.il"}.String())
	assert.Equal(t, "AIDEA <hello@aidea.co.il>", Address{Name: "AIDEA", Email: "hello@aidea.co.il"}.String())
}
