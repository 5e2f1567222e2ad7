package mailer

import (
	"context"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidea/website-api/internal/config"
)

type smtpTranscript struct {
	from string
	rcpt []string
	data string
}

// startFakeSMTP accepts one connection and plays a minimal relay that
// offers no STARTTLS and no AUTH.
func startFakeSMTP(t *testing.T) (string, int, <-chan smtpTranscript) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	done := make(chan smtpTranscript, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tc := textproto.NewConn(conn)
		var got smtpTranscript

		tc.PrintfLine("220 localhost ESMTP fake")
		for {
			line, err := tc.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				tc.PrintfLine("250-localhost")
				tc.PrintfLine("250 8BITMIME")
			case strings.HasPrefix(cmd, "HELO"):
				tc.PrintfLine("250 localhost")
			case strings.HasPrefix(cmd, "MAIL FROM:"):
				got.from = between(line, "<", ">")
				tc.PrintfLine("250 OK")
			case strings.HasPrefix(cmd, "RCPT TO:"):
				got.rcpt = append(got.rcpt, between(line, "<", ">"))
				tc.PrintfLine("250 OK")
			case cmd == "DATA":
				tc.PrintfLine("354 go ahead")
				data, err := tc.ReadDotBytes()
				if err != nil {
					return
				}
				got.data = string(data)
				tc.PrintfLine("250 queued")
			case cmd == "QUIT":
				tc.PrintfLine("221 bye")
				done <- got
				return
			default:
				tc.PrintfLine("502 not implemented")
			}
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, done
}

func between(s, open, close string) string {
	i := strings.Index(s, open)
	j := strings.LastIndex(s, close)
	if i < 0 || j <= i {
		return ""
	}
	return s[i+1 : j]
}

func TestSMTPSender_Send(t *testing.T) {
	host, port, done := startFakeSMTP(t)
	sender := NewSMTPSender(config.SMTPConfig{Host: host, Port: port}, Address{Name: "AIDEA", Email: "hello@aidea.co.il"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := sender.Send(ctx, Message{
		To:      []string{"ops@aidea.co.il", "sales@aidea.co.il"},
		Subject: "New contact submission",
		HTML:    "<p>Hello</p>",
		Text:    "Hello",
		ReplyTo: "dana@gmail.com",
	})
	require.NoError(t, err)

	select {
	case got := <-done:
		assert.Equal(t, "hello@aidea.co.il", got.from)
		assert.Equal(t, []string{"ops@aidea.co.il", "sales@aidea.co.il"}, got.rcpt)
		assert.Contains(t, got.data, "Subject: New contact submission")
		assert.Contains(t, got.data, "To: ops@aidea.co.il, sales@aidea.co.il")
		assert.Contains(t, got.data, "Reply-To: dana@gmail.com")
		assert.Contains(t, got.data, "multipart/alternative")
	case <-time.After(5 * time.Second):
		t.Fatal("fake SMTP server never saw QUIT")
	}
}

func TestSMTPSender_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: port}, Address{Email: "hello@aidea.co.il"})
	err = sender.Send(context.Background(), Message{To: []string{"dana@gmail.com"}, Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to")
}

func TestSMTPSender_DeadlineBoundsSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// Never send a greeting.
		time.Sleep(2 * time.Second)
		conn.Close()
	}()

	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port},
		Address{Email: "hello@aidea.co.il"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = sender.Send(ctx, Message{To: []string{"dana@gmail.com"}, Text: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSMTPSender_RequiresRecipients(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 25}, Address{Email: "hello@aidea.co.il"})
	assert.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestBuildMIME(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	body, err := buildMIME(Address{Name: "AIDEA Studio", Email: "hello@aidea.co.il"}, Message{
		To:      []string{"dana@gmail.com"},
		Subject: "תודה",
		HTML:    "<p>" + strings.Repeat("long line ", 20) + "</p>",
		Text:    "plain",
	}, "abc@smtp.gmail.com", now)
	require.NoError(t, err)
	raw := string(body)

	assert.Contains(t, raw, "From: AIDEA Studio <hello@aidea.co.il>\r\n")
	assert.Contains(t, raw, "Subject: =?UTF-8?q?")
	assert.Contains(t, raw, "Message-ID: <abc@smtp.gmail.com>\r\n")
	assert.Contains(t, raw, "Date: Sun, 01 Mar 2026 10:00:00 +0000\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, raw, "Content-Type: text/html; charset=UTF-8")
	assert.NotContains(t, raw, "Reply-To:")

	for _, line := range strings.Split(raw, "\r\n") {
		assert.LessOrEqual(t, len(line), 998)
	}
}

func TestBuildMIME_RejectsLineBreaksInAddresses(t *testing.T) {
	from := Address{Email: "hello@aidea.co.il"}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  Message
	}{
		{"reply-to", Message{To: []string{"ops@aidea.co.il"}, ReplyTo: "a@gmail.com\r\nBcc: x@evil.test\r\nX-Injected: yes", Text: "x"}},
		{"to", Message{To: []string{"ops@aidea.co.il\nBcc: x@evil.test"}, Text: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := buildMIME(from, tt.msg, "id@localhost", now)
			assert.ErrorIs(t, err, ErrHeaderInjection)
			assert.Nil(t, body)
		})
	}
}

func TestSMTPSender_RejectsHeaderInjectionBeforeDialing(t *testing.T) {
	// Port 1 is never dialed: the message is refused while building.
	sender := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 1}, Address{Email: "hello@aidea.co.il"})
	err := sender.Send(context.Background(), Message{
		To:      []string{"ops@aidea.co.il"},
		ReplyTo: "a@gmail.com\r\nX-Injected: yes",
		Text:    "x",
	})
	assert.ErrorIs(t, err, ErrHeaderInjection)
}
