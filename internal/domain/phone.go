package domain

import (
	"fmt"
	"strings"
)

// PhoneRule is the accepted national digit count for a dial code.
type PhoneRule struct {
	Min, Max int
	Message  string
}

var phoneRules = map[string]PhoneRule{
	"+972": {Min: 9, Max: 9, Message: "Israeli phone numbers require 9 digits"},
	"+1":   {Min: 10, Max: 10, Message: "US phone numbers require 10 digits"},
	"+44":  {Min: 10, Max: 11, Message: "UK phone numbers require 10-11 digits"},
}

var defaultPhoneRule = PhoneRule{Min: 7, Max: 15, Message: "Phone number must be between 7 and 15 digits"}

// PhoneError reports why a phone number was rejected.
type PhoneError struct {
	CountryCode string
	Digits      int
	Message     string
}

func (e *PhoneError) Error() string { return e.Message }

// RuleFor returns the digit rule for a dial code such as "+972".
func RuleFor(countryCode string) PhoneRule {
	if r, ok := phoneRules[NormalizeDialCode(countryCode)]; ok {
		return r
	}
	return defaultPhoneRule
}

// NormalizeDialCode turns "972", " +972 " and "+972" into "+972".
func NormalizeDialCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	return code
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NationalDigits returns the digits of phone with the dial code removed
// when phone is written in international form ("+972 54...").
func NationalDigits(phone, countryCode string) string {
	digits := Digits(phone)
	code := strings.TrimPrefix(NormalizeDialCode(countryCode), "+")
	if code != "" && strings.HasPrefix(strings.TrimSpace(phone), "+") && strings.HasPrefix(digits, code) {
		return digits[len(code):]
	}
	return digits
}

// DetectDialCode finds the longest known dial code prefixing an
// international-form phone number. It returns "" when none matches.
func DetectDialCode(phone string) string {
	phone = strings.TrimSpace(phone)
	if !strings.HasPrefix(phone, "+") {
		return ""
	}
	digits := Digits(phone)
	best := ""
	for _, c := range Countries {
		code := strings.TrimPrefix(c.DialCode, "+")
		if strings.HasPrefix(digits, code) && len(code) > len(best) {
			best = code
		}
	}
	if best == "" {
		return ""
	}
	return "+" + best
}

// ValidatePhone checks the national digit count of phone against the rule
// for countryCode. The form calls it again with the same raw value whenever
// the selected country changes.
func ValidatePhone(phone, countryCode string) error {
	if strings.TrimSpace(phone) == "" {
		return &PhoneError{CountryCode: countryCode, Message: "Phone number is required"}
	}
	code := NormalizeDialCode(countryCode)
	n := len(NationalDigits(phone, code))
	rule := RuleFor(code)
	if n < rule.Min || n > rule.Max {
		return &PhoneError{CountryCode: code, Digits: n, Message: rule.Message}
	}
	return nil
}

// FormatPhone renders the value the form submits: "+972 542327876".
func FormatPhone(phone, countryCode string) string {
	code := NormalizeDialCode(countryCode)
	national := NationalDigits(phone, code)
	if code == "" {
		return national
	}
	return fmt.Sprintf("%s %s", code, national)
}
