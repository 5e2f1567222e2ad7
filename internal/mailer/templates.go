package mailer

import (
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/aidea/website-api/internal/domain"
)

//go:embed templates/*.liquid
var templateFS embed.FS

const (
	confirmationSubject = "Thanks for reaching out to {{ brand }}"
	adminSubject        = "New contact submission from {{ name }}{% if company != \"\" %} ({{ company }}){% endif %}"
)

// email is a parsed subject/HTML/text template triple.
type email struct {
	subject *liquid.Template
	html    *liquid.Template
	text    *liquid.Template
}

// Templates holds the parsed confirmation and admin templates.
type Templates struct {
	confirmation email
	admin        email
}

// LoadTemplates parses the embedded templates. A parse error is a build
// defect, so callers usually treat it as fatal.
func LoadTemplates() (*Templates, error) {
	engine := liquid.NewEngine()

	confirmation, err := parseEmail(engine, "confirmation", confirmationSubject)
	if err != nil {
		return nil, err
	}
	admin, err := parseEmail(engine, "admin", adminSubject)
	if err != nil {
		return nil, err
	}
	return &Templates{confirmation: confirmation, admin: admin}, nil
}

func parseEmail(engine *liquid.Engine, name, subject string) (email, error) {
	var e email
	var err error
	if e.subject, err = parseString(engine, subject); err != nil {
		return e, fmt.Errorf("parse %s subject: %w", name, err)
	}
	if e.html, err = parseFile(engine, name+".html.liquid"); err != nil {
		return e, err
	}
	if e.text, err = parseFile(engine, name+".txt.liquid"); err != nil {
		return e, err
	}
	return e, nil
}

func parseString(engine *liquid.Engine, src string) (*liquid.Template, error) {
	tpl, err := engine.ParseString(src)
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func parseFile(engine *liquid.Engine, file string) (*liquid.Template, error) {
	src, err := templateFS.ReadFile("templates/" + file)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", file, err)
	}
	tpl, err := parseString(engine, string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", file, err)
	}
	return tpl, nil
}

func (e email) render(bindings map[string]any) (Message, error) {
	var msg Message
	subject, err := e.subject.RenderString(bindings)
	if err != nil {
		return msg, fmt.Errorf("render subject: %w", err)
	}
	html, err := e.html.RenderString(bindings)
	if err != nil {
		return msg, fmt.Errorf("render html: %w", err)
	}
	text, err := e.text.RenderString(bindings)
	if err != nil {
		return msg, fmt.Errorf("render text: %w", err)
	}
	msg.Subject = strings.Join(strings.Fields(subject), " ")
	msg.HTML = html
	msg.Text = text
	return msg, nil
}

// Confirmation renders the message sent back to the submitter.
func (t *Templates) Confirmation(sub *domain.ContactSubmission, brand, baseURL string) (Message, error) {
	return t.confirmation.render(bindings(sub, brand, baseURL))
}

// AdminNotification renders the internal alert carrying the full submission.
func (t *Templates) AdminNotification(sub *domain.ContactSubmission, brand, baseURL string) (Message, error) {
	return t.admin.render(bindings(sub, brand, baseURL))
}

func bindings(sub *domain.ContactSubmission, brand, baseURL string) map[string]any {
	return map[string]any{
		"brand":         brand,
		"base_url":      strings.TrimRight(baseURL, "/"),
		"submission_id": sub.ID,
		"name":          sub.Name,
		"email":         sub.Email,
		"phone":         sub.Phone,
		"phone_tel":     telURI(sub.Phone),
		"company":       sub.Company,
		"budget":        sub.Budget,
		"message":       sub.Message,
		"created_at":    sub.CreatedAt.UTC().Format(time.RFC1123),
	}
}

// telURI returns the dialable form of an international phone number
// ("+972542327876"), or "" when no known dial code prefixes it.
func telURI(phone string) string {
	code := domain.DetectDialCode(phone)
	if code == "" {
		return ""
	}
	return strings.ReplaceAll(domain.FormatPhone(phone, code), " ", "")
}
