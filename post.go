package main

import (
	"bytes"
	"fmt"
)

type post struct {
	Title      string
	Slug       string
	Date       string
	Categories tagPairs
	Content    string
	Markdown   bool
}

func newPost(title, date, content string, categories tagPairs, markdown bool) *post {
	return &post{
		Title:      title,
		Slug:       slugify(title),
		Date:       date,
		Categories: categories.dedupe(),
		Content:    content,
		Markdown:   markdown,
	}
}

// Called from templates
func (p *post) PrimaryCategory() tagPair {
	if len(p.Categories) == 0 {
		return tagPair{}
	}
	return p.Categories[0]
}

func (p *post) String() string {
	b := new(bytes.Buffer)
	b.WriteString("title: ")
	b.WriteString(p.Title)
	b.WriteString("\nslug: ")
	b.WriteString(p.Slug)
	b.WriteString("\ndate: ")
	b.WriteString(p.Date)
	b.WriteString("\ncategories: ")
	fmt.Fprintln(b, p.Categories)

	body := []rune(p.Content)
	if len(body) > 200 {
		body = append(body[:200], '.', '.', '.')
	}
	b.WriteString("body: ")
	b.WriteString(string(body))

	return b.String()
}
