// Package utils provides common utility functions.
package utils

import "strings"

// NormalizeKey trims and lower-cases a name so it can be used as a grouping key.
func NormalizeKey(str string) string {
	return strings.ToLower(strings.TrimSpace(str))
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates string to max runes.
func TruncateString(str string, maxLength int) string {
	runes := []rune(str)
	if len(runes) <= maxLength {
		return str
	}

	return string(runes[:maxLength]) + "..."
}
