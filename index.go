package main

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

var errInsertionPointNotFound = errors.New("no insertion point for the card in the index")

const listId = "list"

// indexUpdate is the outcome of upserting one card into the index.
type indexUpdate struct {
	HTML string
	// The existing document had no card list and was replaced by the scaffold.
	Scaffolded bool
	// Number of cards removed for the slug before the new one went in.
	Replaced int
	// Cards in the container after the update, newest first.
	Cards cards
}

// upsertCard puts cardHTML at the top of the index's card list, dropping any
// card already there for slug. An existing document without a card list is
// replaced by scaffold.
func upsertCard(existing, scaffold, cardHTML, slug string) (*indexUpdate, error) {
	u := &indexUpdate{}

	doc, err := html.Parse(strings.NewReader(existing))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	container := findList(doc)
	if container == nil {
		u.Scaffolded = true
		doc, err = html.Parse(strings.NewReader(scaffold))
		if err != nil {
			return nil, fmt.Errorf("parse index scaffold: %w", err)
		}
		container = findList(doc)
	}

	prepend := true
	if container == nil {
		// Fall back to the end of the last section in the document.
		container = findLast(doc, func(n *html.Node) bool { return isElement(n, "section") })
		prepend = false
	}
	if container == nil {
		return nil, errInsertionPointNotFound
	}

	u.Replaced = removeCards(doc, slug)

	nodes, err := html.ParseFragment(strings.NewReader(cardHTML), container)
	if err != nil {
		return nil, fmt.Errorf("parse card: %w", err)
	}
	var before *html.Node
	if prepend {
		before = container.FirstChild
	}
	for _, n := range nodes {
		container.InsertBefore(n, before)
	}

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	u.HTML = b.String()
	u.Cards = readCards(container)
	return u, nil
}

// readIndexCards returns the cards of an index document in order.
func readIndexCards(index string) (cards, error) {
	doc, err := html.Parse(strings.NewReader(index))
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	container := findList(doc)
	if container == nil {
		return nil, nil
	}
	return readCards(container), nil
}

func findList(doc *html.Node) *html.Node {
	return findFirst(doc, func(n *html.Node) bool {
		id, _ := attr(n, "id")
		return isElement(n, "section") && id == listId
	})
}

// removeCards detaches every card for slug from doc, along with the
// whitespace that precedes it, and returns how many it removed.
func removeCards(doc *html.Node, slug string) int {
	matches := findAll(doc, func(n *html.Node) bool { return isCardFor(n, slug) })
	for _, n := range matches {
		if prev := n.PrevSibling; prev != nil && prev.Type == html.TextNode && strings.TrimSpace(prev.Data) == "" {
			prev.Parent.RemoveChild(prev)
		}
		n.Parent.RemoveChild(n)
	}
	return len(matches)
}

func isCard(n *html.Node) bool {
	return isElement(n, "article") && hasClass(n, "card")
}

// isCardFor matches a card by its data-slug, or for cards written without
// one, by a link to the post file.
func isCardFor(n *html.Node, slug string) bool {
	if !isCard(n) {
		return false
	}
	if s, ok := attr(n, "data-slug"); ok {
		return strings.EqualFold(s, slug)
	}
	return cardLinkSlug(n) != "" && strings.EqualFold(cardLinkSlug(n), slug)
}

// cardLinkSlug is the slug of the first posts/<slug>.html link inside n.
func cardLinkSlug(n *html.Node) string {
	link := findFirst(n, func(c *html.Node) bool {
		href, ok := attr(c, "href")
		return isElement(c, "a") && ok && postSlugFromHref(href) != ""
	})
	if link == nil {
		return ""
	}
	href, _ := attr(link, "href")
	return postSlugFromHref(href)
}

func postSlugFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	dir, file := path.Split(u.Path)
	if !strings.EqualFold(path.Base(dir), "posts") || !strings.HasSuffix(strings.ToLower(file), ".html") {
		return ""
	}
	return strings.ToLower(file[:len(file)-len(".html")])
}

func readCards(container *html.Node) cards {
	var cs cards
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if isCard(c) {
			cs = append(cs, readCard(c))
		}
	}
	return cs
}

func readCard(n *html.Node) *card {
	c := &card{}
	if s, ok := attr(n, "data-slug"); ok {
		c.Slug = s
	} else {
		c.Slug = cardLinkSlug(n)
	}
	c.Title = textOf(findFirst(n, func(e *html.Node) bool { return isElement(e, "h2") && hasClass(e, "title") }))
	c.Date = textOf(findFirst(n, func(e *html.Node) bool { return hasClass(e, "date-badge") }))
	c.Excerpt = textOf(findFirst(n, func(e *html.Node) bool { return hasClass(e, "excerpt") }))

	for _, tag := range findAll(n, func(e *html.Node) bool { return isElement(e, "a") && hasClass(e, "tag") }) {
		href, _ := attr(tag, "href")
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		q, err := url.ParseQuery(u.Fragment)
		if err != nil || q.Get("cat") == "" {
			continue
		}
		name := category(textOf(tag))
		if q.Get("sub") == "" {
			c.Categories = append(c.Categories, tagPair{Category: name})
			continue
		}
		// A subcategory link follows the link of the category it belongs to.
		for i := len(c.Categories) - 1; i >= 0; i-- {
			if c.Categories[i].Category.Id() == q.Get("cat") {
				c.Categories[i].Subcategory = name
				break
			}
		}
	}
	return c
}

func isElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	classes, _ := attr(n, "class")
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return collapseWhitespace(b.String())
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findLast(n *html.Node, match func(*html.Node) bool) *html.Node {
	all := findAll(n, match)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// findAll collects matches in document order without descending into them.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if match(n) {
			found = append(found, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return found
}
