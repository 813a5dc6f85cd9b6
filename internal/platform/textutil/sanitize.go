package textutil

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup removes every HTML element from free text, collapses whitespace and trims it.
// Entities produced by the sanitizer are decoded so plain ampersands survive unchanged.
func StripMarkup(value string) string {
	if value == "" {
		return ""
	}
	cleaned := html.UnescapeString(strictPolicy.Sanitize(value))
	return CollapseSpace(cleaned)
}

// CollapseSpace replaces runs of whitespace with a single space and trims the result.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
