package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps the length of
// free-form input such as idempotency keys and payment references.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
