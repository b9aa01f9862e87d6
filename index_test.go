package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type indexFixture struct {
	te       templateEngine
	scaffold string
}

func newIndexFixture(t *testing.T) *indexFixture {
	t.Helper()
	te := newTemplateEngine(paragraphRenderer{})
	conf := &SiteConf{SiteTitle: "My Blog"}
	scaffold, err := te.renderScaffold(conf.templateParam())
	require.NoError(t, err)
	return &indexFixture{te: te, scaffold: scaffold}
}

func (f *indexFixture) card(t *testing.T, title, body string) (string, string) {
	t.Helper()
	p := newPost(title, "May 2024", body, tagPairs{{Category: "Essays"}}, false)
	out, err := f.te.renderCard(p, f.te.toHtml.render([]byte(p.Content)), 90)
	require.NoError(t, err)
	return out, p.Slug
}

func (f *indexFixture) upsert(t *testing.T, existing, title, body string) *indexUpdate {
	t.Helper()
	cardHtml, slug := f.card(t, title, body)
	u, err := upsertCard(existing, f.scaffold, cardHtml, slug)
	require.NoError(t, err)
	return u
}

func TestUpsertIntoEmptyIndex(t *testing.T) {
	f := newIndexFixture(t)

	u := f.upsert(t, "", "Hello, World!", "Body.")
	assert.True(t, u.Scaffolded)
	assert.Zero(t, u.Replaced)
	assert.Equal(t, []string{"hello-world"}, u.Cards.slugs())

	cs, err := readIndexCards(u.HTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello-world"}, cs.slugs())
	assert.Equal(t, "Body.", cs.find("hello-world").Excerpt)
}

func TestUpsertSameSlugKeepsOneCard(t *testing.T) {
	f := newIndexFixture(t)

	first := f.upsert(t, "", "Hello, World!", "Old body.")
	second := f.upsert(t, first.HTML, "hello world", "New body.")
	assert.False(t, second.Scaffolded)
	assert.Equal(t, 1, second.Replaced)
	require.Equal(t, []string{"hello-world"}, second.Cards.slugs())
	assert.Equal(t, "New body.", second.Cards[0].Excerpt)
	assert.Equal(t, "hello world", second.Cards[0].Title)
	assert.Equal(t, 1, strings.Count(second.HTML, `data-slug="hello-world"`))
}

func TestUpsertPreservesOtherCards(t *testing.T) {
	f := newIndexFixture(t)

	a := f.upsert(t, "", "Post A", "A body.")
	b := f.upsert(t, a.HTML, "Post B", "B body.")
	assert.Equal(t, []string{"post-b", "post-a"}, b.Cards.slugs())

	c := f.upsert(t, b.HTML, "Post C", "C body.")
	assert.Equal(t, []string{"post-c", "post-b", "post-a"}, c.Cards.slugs())

	// Republishing moves the card back to the top.
	again := f.upsert(t, c.HTML, "Post A", "A body, edited.")
	assert.Equal(t, []string{"post-a", "post-c", "post-b"}, again.Cards.slugs())
	assert.Equal(t, "A body, edited.", again.Cards.find("post-a").Excerpt)
	assert.Equal(t, "B body.", again.Cards.find("post-b").Excerpt)
}

func TestUpsertIsStable(t *testing.T) {
	f := newIndexFixture(t)

	first := f.upsert(t, "", "Post A", "A body.")
	second := f.upsert(t, first.HTML, "Post A", "A body.")
	third := f.upsert(t, second.HTML, "Post A", "A body.")
	assert.Equal(t, second.HTML, third.HTML)
}

func TestUpsertKeepsHandEditedContent(t *testing.T) {
	f := newIndexFixture(t)
	existing := `<!DOCTYPE html>
<html><head><title>Hand made</title></head>
<body>
<p id="intro">Welcome to my site.</p>
<section id="list">
  <article class="card" data-slug="older"><h2 class="title">Older</h2><p class="excerpt">Kept.</p></article>
</section>
</body></html>`

	u := f.upsert(t, existing, "Newer", "Fresh.")
	assert.False(t, u.Scaffolded)
	assert.Equal(t, []string{"newer", "older"}, u.Cards.slugs())
	assert.Contains(t, u.HTML, `<p id="intro">Welcome to my site.</p>`)
	assert.Contains(t, u.HTML, "<title>Hand made</title>")
	assert.Equal(t, "Kept.", u.Cards.find("older").Excerpt)
}

func TestUpsertReplacesIndexWithoutList(t *testing.T) {
	f := newIndexFixture(t)

	u := f.upsert(t, "<html><body><p>Just some page.</p></body></html>", "Post A", "A body.")
	assert.True(t, u.Scaffolded)
	assert.NotContains(t, u.HTML, "Just some page.")
	assert.Equal(t, []string{"post-a"}, u.Cards.slugs())
}

func TestUpsertFallsBackToLastSection(t *testing.T) {
	scaffold := `<html><body><section id="intro"></section><section id="posts"><p>end</p></section></body></html>`
	cardHtml, slug := newIndexFixture(t).card(t, "Post A", "A body.")

	u, err := upsertCard("", scaffold, cardHtml, slug)
	require.NoError(t, err)

	doc := parseDoc(t, u.HTML)
	sections := findAll(doc, func(n *html.Node) bool { return isElement(n, "section") })
	require.Len(t, sections, 2)
	assert.Nil(t, findFirst(sections[0], isCard))
	article := findFirst(sections[1], isCard)
	require.NotNil(t, article)
	// Appended after what was already there.
	assert.True(t, isElement(sections[1].FirstChild, "p"))
	assert.Equal(t, "post-a", attrOf(t, article, "data-slug"))
}

func TestUpsertWithoutInsertionPoint(t *testing.T) {
	cardHtml, slug := newIndexFixture(t).card(t, "Post A", "A body.")

	_, err := upsertCard("", "<html><body><div>nothing here</div></body></html>", cardHtml, slug)
	assert.ErrorIs(t, err, errInsertionPointNotFound)
}

func TestUpsertRemovesCardsWithoutSlugAttribute(t *testing.T) {
	f := newIndexFixture(t)
	existing := `<html><body><section id="list">
  <article class="card"><h2 class="title">Legacy</h2><a href="posts/post-a.html">Read more</a></article>
  <article class="card"><h2 class="title">Other</h2><a href="posts/other.html">Read more</a></article>
  <article class="card" data-slug="POST-A"><h2 class="title">Upper</h2></article>
</section></body></html>`

	u := f.upsert(t, existing, "Post A", "A body.")
	assert.Equal(t, 2, u.Replaced)
	assert.Equal(t, []string{"post-a", "other"}, u.Cards.slugs())
	assert.Equal(t, "Other", u.Cards.find("other").Title)
}

func TestReadIndexCards(t *testing.T) {
	index := `<html><body><section id="list">
  <article class="card" data-slug="one" data-cat="essays,global-trends" data-sub="personal-opinions,">
    <div class="date-badge">May 2024</div>
    <div class="meta">
      <a class="tag" href="index.html#cat=essays">Essays</a>
      <a class="tag" href="index.html#cat=essays&amp;sub=personal-opinions">Personal Opinions</a>
      <a class="tag" href="index.html#cat=global-trends">Global Trends</a>
    </div>
    <h2 class="title">One</h2>
    <p class="excerpt">First   excerpt.</p>
  </article>
  <article class="card"><a href="../site/posts/two.html">Two</a></article>
  <div class="not-a-card"></div>
</section></body></html>`

	cs, err := readIndexCards(index)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, cs.slugs())

	one := cs[0]
	assert.Equal(t, "One", one.Title)
	assert.Equal(t, "May 2024", one.Date)
	assert.Equal(t, "First excerpt.", one.Excerpt)
	assert.Equal(t, "posts/one.html", one.PostPath())
	assert.Equal(t, tagPairs{
		{Category: "Essays", Subcategory: "Personal Opinions"},
		{Category: "Global Trends"},
	}, one.Categories)

	assert.Nil(t, cs.find("three"))

	cs, err = readIndexCards("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, cs)
}

func TestPostSlugFromHref(t *testing.T) {
	assert.Equal(t, "hello-world", postSlugFromHref("posts/hello-world.html"))
	assert.Equal(t, "hello-world", postSlugFromHref("./Posts/Hello-World.HTML#top"))
	assert.Equal(t, "", postSlugFromHref("index.html#cat=essays"))
	assert.Equal(t, "", postSlugFromHref("about.html"))
	assert.Equal(t, "", postSlugFromHref("posts/"))
}
