package main

import (
	"bytes"
	"fmt"
)

// card is a post's summary as it stands in the index, read back out of the
// index document.
type card struct {
	Title, Slug, Date, Excerpt string
	Categories                 tagPairs
}

func (c *card) PostPath() string { return "posts/" + c.Slug + ".html" }

func (c *card) String() string {
	b := new(bytes.Buffer)
	b.WriteString("title: ")
	b.WriteString(c.Title)
	b.WriteString("\nslug: ")
	b.WriteString(c.Slug)
	b.WriteString("\ndate: ")
	b.WriteString(c.Date)
	b.WriteString("\ncategories: ")
	fmt.Fprintln(b, c.Categories)
	b.WriteString("excerpt: ")
	b.WriteString(c.Excerpt)

	return b.String()
}

// cards in index order, newest first.
type cards []*card

func (cs cards) slugs() []string {
	s := make([]string, len(cs))
	for i, c := range cs {
		s[i] = c.Slug
	}
	return s
}

func (cs cards) find(slug string) *card {
	for _, c := range cs {
		if c.Slug == slug {
			return c
		}
	}
	return nil
}
