package ui

import (
	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

// RenderMarkdown renders assistant output for the terminal viewport.
// The autolink extension is disabled so plain URLs stay plain text and
// the terminal emulator handles link detection.
func RenderMarkdown(content string, width int) string {
	if width < 20 {
		width = 20
	}

	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	doc := p.Parse([]byte(content))
	return string(gomarkdown.Render(doc, r))
}
