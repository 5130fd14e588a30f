package validation

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"student@university.edu", true},
		{"first.last@cs.university.edu", true},
		{"user+tag@example.com", true},
		{"", false},
		{"not-an-email", false},
		{"@missing-local.com", false},
		{"missing-domain@", false},
		{"double..dot@example.com", false},
		{"has space@example.com", false},
		{"has\ttab@example.com", false},
		{"user@-bad.com", false},
		{"user@example", false},
		{strings.Repeat("a", 65) + "@example.com", false},
		{strings.Repeat("a", 250) + "@example.com", false},
	}
	for _, tc := range cases {
		if got := IsValidEmail(tc.email); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestIsLooselyValidPhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"+4915112345678", true},
		{"(555) 123-4567", true},
		{"555.123.4567", true},
		{"12345", false},
		{"not a phone", false},
		{"+1234567890123456", false},
	}
	for _, tc := range cases {
		if got := IsLooselyValidPhone(tc.phone); got != tc.want {
			t.Errorf("IsLooselyValidPhone(%q) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}
