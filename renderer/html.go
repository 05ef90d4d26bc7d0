package renderer

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts a markdown report into an HTML fragment. Tables are rendered
// as HTML tables.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("markdown to html: %w", err)
	}
	return buf.String(), nil
}

// HTMLPage wraps an HTML fragment in a standalone page.
func HTMLPage(title, body string) string {
	var b bytes.Buffer
	fmt.Fprintln(&b, "<!DOCTYPE html>")
	fmt.Fprintln(&b, `<html><head><meta charset="utf-8">`)
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintln(&b, "<style>body{font-family:sans-serif}table{border-collapse:collapse}td,th{padding:2px 8px;border-bottom:1px solid #ddd}</style>")
	fmt.Fprintln(&b, "</head><body>")
	b.WriteString(body)
	fmt.Fprintln(&b, "</body></html>")
	return b.String()
}
