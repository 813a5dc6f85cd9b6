package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const defaultStringLimit = 256

// sanitizeString drops control characters other than whitespace and caps the result at limit
// runes, so request-supplied values cannot forge log lines or blow up label cardinality.
func sanitizeString(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if utf8.RuneCountInString(cleaned) <= limit {
		return cleaned
	}
	return string([]rune(cleaned)[:limit])
}

// SanitizeRoute bounds a route or path for use in labels and span names.
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return sanitizeString(route, 180)
}

func SanitizeMethod(method string) string {
	return sanitizeString(strings.ToUpper(method), 10)
}

// SanitizeActorID cleans the caller-supplied actor id before it reaches history entries.
func SanitizeActorID(actor string) string {
	return strings.TrimSpace(sanitizeString(actor, 64))
}
