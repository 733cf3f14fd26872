// Package render holds the document conversion capabilities: markdown to
// HTML, HTML to a PDF artifact, and PDF bytes back to text.
package render

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// Markdown converts markdown documents to HTML
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a markdown renderer
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Render converts markdown to HTML. Conversion of well-formed input does not
// fail; on the off chance it does, the raw markdown is returned so the
// caller still has displayable content.
func (m *Markdown) Render(markdown string) string {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(markdown), &buf); err != nil {
		return markdown
	}
	return buf.String()
}
