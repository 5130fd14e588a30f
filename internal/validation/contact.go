package validation

import (
	"strings"
	"unicode"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SanitizeContactInfo produces a persistable copy of the contact
// union. Invalid emails are dropped rather than kept, phone numbers
// are reduced to digits plus an optional leading plus, and free-text
// parts are truncated.
func SanitizeContactInfo(contact *domain.ContactInfo) *domain.ContactInfo {
	if contact == nil {
		return nil
	}
	if contact.Structured == nil {
		return &domain.ContactInfo{Raw: truncate(strings.TrimSpace(contact.Raw), contactRawMaxLen)}
	}

	details := contact.Structured
	clean := &domain.ContactDetails{
		Name:       truncate(strings.TrimSpace(details.Name), 100),
		Department: truncate(strings.TrimSpace(details.Department), 100),
	}
	if email := strings.ToLower(strings.TrimSpace(details.Email)); IsValidEmail(email) {
		clean.Email = email
	}
	if details.Phone != "" {
		clean.Phone = sanitizePhone(details.Phone)
	}
	return &domain.ContactInfo{Structured: clean}
}

// sanitizePhone keeps digits and a leading plus only.
func sanitizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (r == '+' && i == 0 && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
