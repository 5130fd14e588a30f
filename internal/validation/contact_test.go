package validation

import (
	"strings"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestSanitizeContactInfoRaw(t *testing.T) {
	long := strings.Repeat("x", 150)
	out := SanitizeContactInfo(&domain.ContactInfo{Raw: "  " + long})
	if out == nil || out.Structured != nil {
		t.Fatalf("raw arm must stay raw")
	}
	if len([]rune(out.Raw)) != 100 {
		t.Errorf("raw contact = %d runes, want truncated to 100", len([]rune(out.Raw)))
	}
}

func TestSanitizeContactInfoStructured(t *testing.T) {
	out := SanitizeContactInfo(&domain.ContactInfo{Structured: &domain.ContactDetails{
		Email:      "  Jane.Doe@University.EDU ",
		Phone:      "+49 (151) 123-45678",
		Name:       "  Jane Doe ",
		Department: "Physics",
	}})
	if out == nil || out.Structured == nil {
		t.Fatalf("structured arm must stay structured")
	}
	if out.Structured.Email != "jane.doe@university.edu" {
		t.Errorf("email = %q, want lowercased and trimmed", out.Structured.Email)
	}
	if out.Structured.Phone != "+4915112345678" {
		t.Errorf("phone = %q, want digits with leading plus", out.Structured.Phone)
	}
	if out.Structured.Name != "Jane Doe" {
		t.Errorf("name = %q, want trimmed", out.Structured.Name)
	}
}

func TestSanitizeContactInfoDropsInvalidEmail(t *testing.T) {
	out := SanitizeContactInfo(&domain.ContactInfo{Structured: &domain.ContactDetails{
		Email: "not an email",
	}})
	if out.Structured.Email != "" {
		t.Errorf("invalid email must be dropped, got %q", out.Structured.Email)
	}
}

func TestValidateContactInfo(t *testing.T) {
	t.Run("raw email-ish warns", func(t *testing.T) {
		res := NewResult()
		ValidateContactInfo(&domain.ContactInfo{Raw: "reach me at bob@@nowhere"}, res)
		if !res.Valid {
			t.Fatalf("raw contact must not hard-fail: %v", res.Errors)
		}
		if len(res.Warnings) == 0 {
			t.Errorf("expected a warning for email-like raw value")
		}
	})

	t.Run("structured invalid email errors", func(t *testing.T) {
		res := NewResult()
		ValidateContactInfo(&domain.ContactInfo{Structured: &domain.ContactDetails{Email: "broken@"}}, res)
		if res.Valid {
			t.Fatalf("invalid structured email must fail")
		}
	})

	t.Run("raw too long errors", func(t *testing.T) {
		res := NewResult()
		ValidateContactInfo(&domain.ContactInfo{Raw: strings.Repeat("x", 101)}, res)
		if res.Valid {
			t.Fatalf("oversized raw contact must fail")
		}
	})
}
