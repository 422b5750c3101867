package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const (
	maxInputRunes       = 1000
	maxDisplayNameRunes = 64
)

// SanitizeString removes potentially dangerous characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if r := []rune(input); len(r) > maxInputRunes {
		input = string(r[:maxInputRunes])
	}

	return input
}

// SanitizeHTML removes all HTML tags
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}

// CleanText turns entity-encoded text from an external source into plain
// text. Raw markup is dropped; encoded characters such as &lt;hr&gt; are
// text and come out literally.
func CleanText(input string) string {
	// the strict policy leaves text entity-encoded
	return SanitizeString(html.UnescapeString(SanitizeHTML(input)))
}

// SanitizeDisplayName makes a chat user's name safe to echo back.
func SanitizeDisplayName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if r := []rune(name); len(r) > maxDisplayNameRunes {
		name = string(r[:maxDisplayNameRunes])
	}
	if name == "" {
		return "Player"
	}
	return name
}

// ValidateFileType checks if file extension is allowed
func ValidateFileType(filename string, allowedTypes []string) bool {
	filename = strings.ToLower(filename)
	for _, ext := range allowedTypes {
		if strings.HasSuffix(filename, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// ValidateFileSize checks if file size is within limit
func ValidateFileSize(size int64, maxSize int64) bool {
	return size > 0 && size <= maxSize
}
