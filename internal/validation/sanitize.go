package validation

import (
	"regexp"
	"strings"
)

// Pattern categories checked by ContainsMaliciousContent, in matching
// order. Order only affects short-circuit speed, not the outcome.
var (
	scriptPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script`),
		regexp.MustCompile(`(?i)<\s*/\s*script`),
		regexp.MustCompile(`(?i)\bon(load|error|click|mouseover|focus|blur|submit|change)\s*=`),
		regexp.MustCompile(`(?i)(javascript|vbscript|data)\s*:`),
		regexp.MustCompile(`(?i)document\s*\.\s*(cookie|write|location)`),
		regexp.MustCompile(`(?i)window\s*\.\s*location`),
		regexp.MustCompile(`(?i)\.\s*innerHTML\s*=`),
		regexp.MustCompile(`(?i)<\s*iframe`),
	}

	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bunion\s+(all\s+)?select\b`),
		regexp.MustCompile(`(?i)\bdrop\s+table\b`),
		regexp.MustCompile(`(?i)\bdelete\s+from\b`),
		regexp.MustCompile(`(?i)\binsert\s+into\b`),
		regexp.MustCompile(`(?i)'\s*or\s+'?1'?\s*=\s*'?1`),
		regexp.MustCompile(`(?i);\s*--`),
		regexp.MustCompile(`'\s*--`),
		regexp.MustCompile(`/\*.*\*/`),
	}

	codePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\beval\s*\(`),
		regexp.MustCompile(`(?i)\bsystem\s*\(`),
		regexp.MustCompile(`(?i)\bexec\s*\(`),
		regexp.MustCompile(`(?i)<\?php`),
		regexp.MustCompile(`(?i)\bbase64_decode\s*\(`),
	}

	jsProtocolPrefix = regexp.MustCompile(`(?i)javascript\s*:`)
)

// ContainsMaliciousContent reports whether text matches any known
// injection pattern. It is a predicate only; stripping is handled by
// StripBasic. False positives are acceptable for this domain, callers
// reject with a message rather than persisting.
func ContainsMaliciousContent(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range scriptPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	for _, p := range sqlPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	for _, p := range codePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// StripBasic removes angle brackets and javascript: protocol prefixes.
// This is the lighter-weight path used for values that are kept rather
// than rejected, such as search terms.
func StripBasic(text string) string {
	text = strings.ReplaceAll(text, "<", "")
	text = strings.ReplaceAll(text, ">", "")
	text = jsProtocolPrefix.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
