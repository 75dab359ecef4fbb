package search

import (
	"context"
	"fmt"
	"strings"
)

// Result is a single web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider executes a web search query.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// FormatResults renders hits as a numbered, citation-friendly block for prompt injection.
func FormatResults(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\nURL: %s\n%s\n\n", i+1, r.Title, r.URL, strings.TrimSpace(r.Snippet))
	}
	return strings.TrimSpace(b.String())
}
