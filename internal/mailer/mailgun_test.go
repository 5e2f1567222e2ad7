package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aidea/website-api/internal/config"
)

func TestMailgunSender_Send(t *testing.T) {
	var gotPath, gotUser, gotKey string
	var gotTo []string
	var gotFrom, gotReplyTo, gotSubject string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotKey, _ = r.BasicAuth()
		if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		gotTo = r.PostForm["to"]
		gotFrom = r.PostForm.Get("from")
		gotReplyTo = r.PostForm.Get("h:Reply-To")
		gotSubject = r.PostForm.Get("subject")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"<20260301.1@mg.aidea.co.il>","message":"Queued. Thank you."}`))
	}))
	defer server.Close()

	sender := NewMailgunSender(config.MailgunConfig{
		Domain:  "mg.aidea.co.il",
		APIKey:  "key-test",
		BaseURL: server.URL + "/",
	}, Address{Name: "AIDEA", Email: "hello@aidea.co.il"})

	err := sender.Send(context.Background(), Message{
		To:      []string{"ops@aidea.co.il", "sales@aidea.co.il"},
		Subject: "New contact submission",
		Text:    "hi",
		ReplyTo: "dana@gmail.com",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if !strings.HasSuffix(gotPath, "/mg.aidea.co.il/messages") {
		t.Errorf("path = %q, want suffix %q", gotPath, "/mg.aidea.co.il/messages")
	}
	if gotUser != "api" || gotKey != "key-test" {
		t.Errorf("basic auth = %q/%q, want api/key-test", gotUser, gotKey)
	}
	if len(gotTo) != 2 {
		t.Errorf("len(to) = %d, want 2", len(gotTo))
	}
	if gotFrom != "AIDEA <hello@aidea.co.il>" {
		t.Errorf("from = %q", gotFrom)
	}
	if gotReplyTo != "dana@gmail.com" {
		t.Errorf("reply-to = %q", gotReplyTo)
	}
	if gotSubject != "New contact submission" {
		t.Errorf("subject = %q", gotSubject)
	}
}

func TestMailgunSender_SendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewMailgunSender(config.MailgunConfig{Domain: "mg.aidea.co.il", APIKey: "bad", BaseURL: server.URL},
		Address{Email: "hello@aidea.co.il"})

	err := sender.Send(context.Background(), Message{To: []string{"dana@gmail.com"}, Subject: "x", Text: "y"})
	if err == nil {
		t.Fatal("Send() expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want status code in message", err)
	}
}

func TestMailgunSender_NoAPIKey(t *testing.T) {
	sender := NewMailgunSender(config.MailgunConfig{Domain: "mg.aidea.co.il"}, Address{Email: "hello@aidea.co.il"})
	if err := sender.Send(context.Background(), Message{To: []string{"dana@gmail.com"}}); err == nil {
		t.Error("Send() expected error without API key")
	}
}
