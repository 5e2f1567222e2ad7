package domain

import (
	"strings"
	"time"
)

// ContactRequest is the payload posted by the website's lead-capture form.
type ContactRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode,omitempty"`
	Company     string `json:"company,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Message     string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (r ContactRequest) Normalize() ContactRequest {
	return ContactRequest{
		Name:        strings.TrimSpace(r.Name),
		Email:       strings.TrimSpace(r.Email),
		Phone:       strings.TrimSpace(r.Phone),
		CountryCode: strings.TrimSpace(r.CountryCode),
		Company:     strings.TrimSpace(r.Company),
		Budget:      strings.TrimSpace(r.Budget),
		Message:     strings.TrimSpace(r.Message),
	}
}

// MissingFields returns the JSON names of required fields that are empty.
func (r ContactRequest) MissingFields() []string {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Phone == "" {
		missing = append(missing, "phone")
	}
	if r.Message == "" {
		missing = append(missing, "message")
	}
	return missing
}

// ContactSubmission is a stored contact request. It is written once and
// never updated.
type ContactSubmission struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Company   string    `json:"company,omitempty" db:"company"`
	Budget    string    `json:"budget,omitempty" db:"budget"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewSubmission builds the row to insert from a normalized request.
// ID stays zero until the store assigns one.
func NewSubmission(r ContactRequest, now time.Time) *ContactSubmission {
	return &ContactSubmission{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Company:   r.Company,
		Budget:    r.Budget,
		Message:   r.Message,
		CreatedAt: now.UTC(),
	}
}
