package validation

import (
	"strings"
	"unicode/utf8"
)

// SanitizeMetadata builds a safe copy of ticket metadata. Reserved or
// malicious keys and non-scalar values are silently dropped, string
// values are trimmed, truncated, and re-checked after truncation.
// Dropping entries here is intentional: unsafe metadata never fails
// the whole payload.
func SanitizeMetadata(metadata map[string]any) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	clean := make(map[string]any, len(metadata))
	for key, value := range metadata {
		if _, reserved := metadataReservedKeys[key]; reserved {
			continue
		}
		if ContainsMaliciousContent(key) {
			continue
		}
		switch v := value.(type) {
		case string:
			trimmed := strings.TrimSpace(v)
			if utf8.RuneCountInString(trimmed) > metadataValueMaxLen {
				trimmed = truncate(trimmed, metadataValueMaxLen)
			}
			if ContainsMaliciousContent(trimmed) {
				continue
			}
			clean[key] = trimmed
		case float64, int, int64, bool, nil:
			clean[key] = v
		default:
			// objects and arrays are not persisted as metadata values
		}
	}
	if len(clean) == 0 {
		return nil
	}
	return clean
}
