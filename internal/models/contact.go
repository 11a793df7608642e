package models

import (
	"net/mail"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeEmail validates a bare email address and returns it trimmed and
// lower-cased. Display-name forms such as "Ana <ana@example.com>" are
// rejected.
func NormalizeEmail(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return "", FieldError{Field: field, Reason: "must be a valid email address"}
	}
	return strings.ToLower(addr.Address), nil
}

// NormalizePhone parses value as a phone number, using region for numbers
// written without a country code, and returns it in E.164 form.
func NormalizePhone(value, region, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	number, err := phonenumbers.Parse(value, region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", FieldError{Field: field, Reason: "must be a valid phone number"}
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}
