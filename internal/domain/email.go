package domain

import (
	"errors"
	"regexp"
	"strings"
)

// AllowedEmailDomains is the fixed list of mail providers the contact form
// accepts. Comparison is exact and case-sensitive.
var AllowedEmailDomains = []string{
	"gmail.com",
	"yahoo.com",
	"hotmail.com",
	"outlook.com",
	"icloud.com",
	"protonmail.com",
	"aol.com",
	"mail.com",
	"zoho.com",
	"gmx.com",
	"yandex.com",
	"live.com",
}

var (
	ErrEmailRequired      = errors.New("Email is required")
	ErrEmailFormat        = errors.New("Please enter a valid email address")
	ErrEmailDomainBlocked = errors.New("Please use a supported email provider (e.g. gmail.com, outlook.com, yahoo.com)")
)

var emailLocalPart = regexp.MustCompile("^[A-Za-z0-9.!#$%&'*+/=?^_`{|}~-]+$")

var allowedDomainSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllowedEmailDomains))
	for _, d := range AllowedEmailDomains {
		m[d] = struct{}{}
	}
	return m
}()

// ValidateEmail applies the form's email rule: exactly one "@", a local
// part from a conservative character class, and a domain from
// AllowedEmailDomains. No case folding is done on the domain.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ErrEmailFormat
	}
	if !emailLocalPart.MatchString(parts[0]) {
		return ErrEmailFormat
	}
	if _, ok := allowedDomainSet[parts[1]]; !ok {
		return ErrEmailDomainBlocked
	}
	return nil
}
