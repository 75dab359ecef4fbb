package utils

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// SlugMaxLength bounds derived storage keys.
	SlugMaxLength = 50
	SlugSeparator = "_"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\\r?\\n?(.*?)```")

// Slugify lower-cases s, replaces whitespace and path separators with SlugSeparator and
// truncates the result to SlugMaxLength runes. Distinct inputs may collide after truncation.
func Slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r), r == '/', r == '\\':
			b.WriteString(SlugSeparator)
		default:
			b.WriteRune(r)
		}
	}
	return TruncateRunes(b.String(), SlugMaxLength)
}

// TruncateRunes cuts s to at most n runes without splitting a multi-byte character.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Preview returns the first n runes of s followed by "..." when s was longer.
func Preview(s string, n int) string {
	cut := TruncateRunes(s, n)
	if cut == s {
		return s
	}
	return cut + "..."
}

// ExtractFencedBlock returns the contents of the first ``` fenced block in s, with or without
// a language tag. When s holds no complete fenced block the trimmed input is returned.
func ExtractFencedBlock(s string) string {
	matches := fencedBlockPattern.FindStringSubmatch(s)
	if len(matches) < 2 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(matches[1])
}
