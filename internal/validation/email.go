package validation

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)

// IsValidEmail checks address shape. The base pattern alone admits a
// few degenerate forms, so length bounds, consecutive dots, and
// embedded spaces are enforced as explicit checks on top of it.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	if strings.ContainsAny(email, " \t") {
		return false
	}
	if strings.Contains(email, "..") {
		return false
	}
	if !emailPattern.MatchString(email) {
		return false
	}
	at := strings.LastIndex(email, "@")
	local, dom := email[:at], email[at+1:]
	if len(local) > 64 || len(dom) > 253 {
		return false
	}
	return true
}

// loosePhonePattern is an E.164-like shape after separator stripping.
var loosePhonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// IsLooselyValidPhone accepts digits with an optional leading plus,
// ignoring common separators.
func IsLooselyValidPhone(phone string) bool {
	stripped := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "").Replace(phone)
	return loosePhonePattern.MatchString(stripped)
}
