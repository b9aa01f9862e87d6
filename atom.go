package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	atom "github.com/thomas11/atomgenerator"
	"go.uber.org/zap"
)

// RenderAtom rebuilds the site feed and one feed per category from the cards
// in the index. Feeds need absolute links, so nothing is written without a
// base URL.
func (s *Site) RenderAtom(cs cards) error {
	if s.conf.BaseUrl == "" {
		s.log.Debug("No base_url configured, skipping feeds")
		return nil
	}

	filePath := filepath.Join(s.conf.OutDir, "index.xml")
	if err := s.renderAndSaveFeed(s.conf.SiteTitle, "", filePath, cs); err != nil {
		return err
	}

	return s.renderAndSaveCategoriesAtom(cs)
}

func (s *Site) renderFeed(title, relUrl string, cs cards) ([]byte, bool, error) {
	feedUrl := s.conf.BaseUrl
	if len(relUrl) > 0 {
		if relUrl[0] == '/' {
			relUrl = relUrl[1:]
		}
		feedUrl += relUrl
	}

	feed := atom.Feed{
		Title:   title,
		Link:    feedUrl,
		PubDate: time.Now(),
	}
	// Atom requires an author; the site stands in for one.
	author := atom.Author{Name: s.conf.Author, Uri: s.conf.AuthorUri}
	if author.Name == "" {
		author.Name = s.conf.SiteTitle
	}
	feed.AddAuthor(author)

	for _, c := range cs {
		feed.AddEntry(s.entryForCard(c))
	}

	errs := feed.Validate()
	if len(errs) > 0 {
		fields := make([]zap.Field, 0, len(errs)+1)
		fields = append(fields, zap.String("feed", title))
		for _, e := range errs {
			fields = append(fields, zap.NamedError("problem", e))
		}
		s.log.Warn("Atom feed is not valid, not writing it", fields...)
		return nil, false, nil
	}

	xml, err := feed.GenXml()
	return xml, true, err
}

func (s *Site) entryForCard(c *card) *atom.Entry {
	e := &atom.Entry{
		Title:       c.Title,
		Description: c.Excerpt,
		Link:        s.conf.BaseUrl + c.PostPath(),
		PubDate:     s.cardDate(c),
	}

	for _, t := range c.Categories {
		e.AddCategory(atom.Category{Term: t.Category.String()})
	}

	if renderedBody, ok := s.renderCache[c.Slug]; ok {
		e.Content = renderedBody
	}

	return e
}

// cardDate makes a time out of a card's free-form date label. Labels that
// don't parse fall back to when the post file was last written.
func (s *Site) cardDate(c *card) time.Time {
	if t, err := dateparse.ParseAny(c.Date); err == nil {
		return t
	}
	if info, err := os.Stat(s.postPath(c.Slug)); err == nil {
		return info.ModTime()
	}
	return time.Now()
}

func (s *Site) renderAndSaveFeed(title, relUrl, filePath string, cs cards) error {
	atomXml, ok, err := s.renderFeed(title, relUrl, cs)
	if err != nil || !ok {
		return err
	}

	return writeFileAtomic(filePath, atomXml)
}

func (s *Site) renderAndSaveCategoriesAtom(cs cards) error {
	byCat := groupByCategory(cs)
	if len(byCat) == 0 {
		return nil
	}

	catDir := filepath.Join(s.conf.OutDir, s.conf.CategoriesOutDir)
	if err := os.MkdirAll(catDir, os.FileMode(0775)); err != nil {
		return err
	}

	for _, catCards := range byCat {
		category := catCards.Category
		title := s.conf.SiteTitle + ` Category "` + category.String() + `."`
		urlPath := "index.html#cat=" + category.Id()
		filePath := filepath.Join(catDir, category.Id()+".xml")

		if err := s.renderAndSaveFeed(title, urlPath, filePath, catCards.Cards); err != nil {
			return err
		}
	}
	return nil
}
