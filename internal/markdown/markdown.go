// Package markdown converts Markdown bodies to HTML for the site pipeline.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// converter is shared; goldmark.Markdown is safe for concurrent use.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		// Posts routinely embed raw HTML; the source tree is trusted input.
		gmhtml.WithUnsafe(),
	),
)

// ToHTML renders a Markdown body (frontmatter already removed) to HTML.
func ToHTML(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
