package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Patterns for personal data that must not land in logs. Chat bodies can
// carry anything a user types; contact details are the common leak.
var piiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),

	// Phone numbers: international or local, 7+ digits with optional separators
	regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`),
}

// RedactedValue is the replacement for redacted spans.
const RedactedValue = "[REDACTED]"

// defaultPreviewLen caps how much of a message body a log line may carry.
const defaultPreviewLen = 48

// Redact replaces contact details (emails, phone numbers) in a string.
func Redact(s string) string {
	result := s
	for _, pattern := range piiPatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// Preview returns a redacted, length-capped form of a message body that
// is safe to attach to a log event. maxLen <= 0 uses the default cap.
func Preview(body string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultPreviewLen
	}

	preview := Redact(strings.TrimSpace(body))
	preview = strings.Join(strings.Fields(preview), " ")

	if utf8.RuneCountInString(preview) <= maxLen {
		return preview
	}

	runes := []rune(preview)
	return string(runes[:maxLen]) + "…"
}
