package renderer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown converts Markdown documents to HTML fragments. A single instance
// is safe to reuse across documents.
type Markdown struct {
	md goldmark.Markdown
}

// New returns a converter with the site extension set: smart typography,
// autolinking of bare URLs, tables and definition lists. Fenced code blocks
// are part of the CommonMark core. Raw HTML in documents is passed through.
func New() *Markdown {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Typographer,
			extension.Linkify,
			extension.Table,
			extension.DefinitionList,
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Markdown{md: md}
}

// Convert renders src to an HTML fragment.
func (m *Markdown) Convert(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
