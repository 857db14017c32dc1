package utils

import "strings"

// TruncateForLog shortens s to limit runes, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Blank reports whether s contains nothing but whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
