package textutil

import (
	"regexp"
	"strings"
)

var nonAlphanumRegex = regexp.MustCompile(`[^a-z0-9]`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// AthleteKey derives a stable identifier from an athlete display name.
// The same display name always yields the same key: lowercased, with
// every non-alphanumeric rune collapsed to an underscore.
func AthleteKey(name string) string {
	return nonAlphanumRegex.ReplaceAllString(strings.ToLower(name), "_")
}

func NormalizeWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}
