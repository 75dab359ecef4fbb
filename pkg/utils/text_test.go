package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Remote work adoption trends", want: "remote_work_adoption_trends"},
		{name: "tabs and newlines", in: "City\tmigration\npatterns", want: "city_migration_patterns"},
		{name: "each space counts", in: "a  b", want: "a__b"},
		{name: "path separators", in: "Pros/Cons of AI\\ML", want: "pros_cons_of_ai_ml"},
		{name: "truncated", in: strings.Repeat("abcde ", 20), want: strings.Repeat("abcde_", 8) + "ab"},
		{name: "multibyte kept whole", in: strings.Repeat("é", 60), want: strings.Repeat("é", 50)},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.in)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if n := len([]rune(got)); n > SlugMaxLength {
				t.Errorf("Slugify(%q) has %d runes, max %d", tt.in, n, SlugMaxLength)
			}
		})
	}
}

func TestExtractFencedBlock(t *testing.T) {
	const body = `{"topic": "T", "subtopics": ["a", "b"]}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare", in: "  " + body + "\n", want: body},
		{name: "json fence", in: "```json\n" + body + "\n```", want: body},
		{name: "untagged fence", in: "```\n" + body + "\n```", want: body},
		{name: "surrounding prose", in: "Here you go:\n```json\n" + body + "\n```\nThanks!", want: body},
		{name: "inline fence", in: "```" + body + "```", want: body},
		{name: "first block wins", in: "```\nfirst\n```\n```\nsecond\n```", want: "first"},
		{name: "unclosed fence left alone", in: "```json\n" + body, want: "```json\n" + body},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFencedBlock(tt.in); got != tt.want {
				t.Errorf("ExtractFencedBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short", 200); got != "short" {
		t.Errorf("Preview = %q", got)
	}
	if got := Preview("abcdef", 3); got != "abc..." {
		t.Errorf("Preview = %q", got)
	}
}
