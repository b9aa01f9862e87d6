package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

const (
	bodyFormatText     = "text"
	bodyFormatMarkdown = "markdown"
)

type renderer interface {
	render(in []byte) string
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// paragraphRenderer wraps each blank-line separated block of plain text in a
// <p>, escaping it.
type paragraphRenderer struct{}

func (paragraphRenderer) render(in []byte) string {
	var b strings.Builder
	for _, para := range paragraphBreak.Split(strings.TrimSpace(string(in)), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(escape(para))
		b.WriteString("</p>")
	}
	return b.String()
}

var htmlFlags blackfriday.HTMLFlags
var extensions blackfriday.Extensions

func init() {
	htmlFlags |= blackfriday.UseXHTML
	htmlFlags |= blackfriday.Smartypants
	htmlFlags |= blackfriday.SmartypantsFractions
	htmlFlags |= blackfriday.SmartypantsLatexDashes
	// Post bodies are user text: raw HTML is dropped and only safe link schemes are linked.
	htmlFlags |= blackfriday.SkipHTML
	htmlFlags |= blackfriday.Safelink

	extensions |= blackfriday.NoIntraEmphasis
	extensions |= blackfriday.Tables
	extensions |= blackfriday.FencedCode
	extensions |= blackfriday.Autolink
	extensions |= blackfriday.Strikethrough
}

func newMarkdownRenderer() renderer {
	r := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: htmlFlags})
	return &blackfridayHtmlRenderer{r, extensions}
}

type blackfridayHtmlRenderer struct {
	r          blackfriday.Renderer
	extensions blackfriday.Extensions
}

func (b *blackfridayHtmlRenderer) render(in []byte) string {
	return string(blackfriday.Run(in, blackfriday.WithRenderer(b.r), blackfriday.WithExtensions(b.extensions)))
}

// resolveBodyFormat picks the body format for a post. An explicit format wins;
// otherwise content files ending in .md or .markdown are Markdown.
func resolveBodyFormat(format, contentFile string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case bodyFormatMarkdown:
		return true, nil
	case bodyFormatText:
		return false, nil
	case "":
		lower := strings.ToLower(contentFile)
		return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown"), nil
	default:
		return false, fmt.Errorf("unknown body format %q (want %q or %q)", format, bodyFormatText, bodyFormatMarkdown)
	}
}
