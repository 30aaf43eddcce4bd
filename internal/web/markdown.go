package web

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownInstance is initialized once and reused. The parser configuration
// never changes and the goldmark Markdown is safe to share; each Convert call
// creates its own parse state.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	})
	return markdownInstance
}

// renderMarkdown converts stored markdown source to HTML for display. Raw
// HTML in the source is dropped by goldmark's default policy, so submitted
// content cannot inject markup.
func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
