package main

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed tmpl/*.html
var templateFiles embed.FS

type templateParam struct {
	SiteTitle string
	PageTitle string
	Menu      []menuCategory
	FeedUrl   string
	// Relative path from the page being rendered back to the outdir.
	Root string
}

func (t templateParam) withRoot(root string) templateParam {
	t.Root = root
	return t
}

type postTemplateParam struct {
	templateParam
	*post
	RenderedBody template.HTML
}

type cardTemplateParam struct {
	*post
	Root    string
	Excerpt string
}

type templateEngine struct {
	toHtml        renderer
	templateCache map[string]*template.Template
}

func newTemplateEngine(r renderer) templateEngine {
	te := templateEngine{
		toHtml:        r,
		templateCache: make(map[string]*template.Template),
	}
	for _, name := range []string{"index.html", "post.html", "card.html"} {
		te.templateCache[name] = template.Must(template.New(name).ParseFS(templateFiles, "tmpl/global.html", "tmpl/"+name))
	}
	return te
}

func (te *templateEngine) renderScaffold(tp templateParam) (string, error) {
	tp.PageTitle = ""
	return te.execute("index.html", tp.withRoot(""))
}

// renderPost returns the full post page and the rendered body on its own.
func (te *templateEngine) renderPost(tp templateParam, p *post) (string, string, error) {
	renderedBody := te.toHtml.render([]byte(p.Content))
	tp.PageTitle = p.Title
	page, err := te.execute("post.html", postTemplateParam{
		templateParam: tp.withRoot("../"),
		post:          p,
		RenderedBody:  template.HTML(renderedBody),
	})
	return page, renderedBody, err
}

func (te *templateEngine) renderCard(p *post, renderedBody string, excerptLength int) (string, error) {
	out, err := te.execute("card.html", cardTemplateParam{
		post:    p,
		Excerpt: excerpt(textContent(renderedBody), excerptLength),
	})
	return strings.TrimRightFunc(out, unicode.IsSpace), err
}

func (te *templateEngine) execute(name string, data any) (string, error) {
	var b bytes.Buffer
	if err := te.templateCache[name].ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// textContent flattens rendered body markup to its text, with a space between
// text nodes so paragraphs don't run together.
func textContent(markup string) string {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return collapseWhitespace(markup)
	}

	var parts []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	for _, n := range nodes {
		traverse(n)
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

// excerpt cuts text to n runes, marking the cut with an ellipsis.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + "…"
}
