package utils

import "strings"

// NormalizeAnswer collapses inner whitespace and trims the ends so answer
// texts coming from different sources compare equal.
func NormalizeAnswer(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// Truncate cuts s to at most max runes, appending an ellipsis when it had to cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
