// blogcard publishes one post of a small static blog at a time: it writes the
// post's page and keeps a card for it at the top of the site's index.html.
//
// The index is the only state. Publishing a post whose title slugs to one
// already in the index replaces that card instead of adding a second one.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
	"go.uber.org/zap"
)

const (
	indexFileName = "index.html"
	postsDirName  = "posts"
)

type Site struct {
	conf        *SiteConf
	engine      templateEngine
	log         *zap.Logger
	renderCache map[string]string
}

// publishResult names the files a publish run wrote.
type publishResult struct {
	PostPath  string
	IndexPath string
	Cards     cards
}

func NewSite(conf *SiteConf, log *zap.Logger) *Site {
	return &Site{
		conf:        conf,
		log:         log,
		renderCache: make(map[string]string),
	}
}

func (s *Site) indexPath() string { return filepath.Join(s.conf.OutDir, indexFileName) }

func (s *Site) postPath(slug string) string {
	return filepath.Join(s.conf.OutDir, postsDirName, slug+".html")
}

// Publish writes the post's page and upserts its card into the index.
func (s *Site) Publish(p *post) (*publishResult, error) {
	var toHtml renderer = paragraphRenderer{}
	if p.Markdown {
		toHtml = newMarkdownRenderer()
	}
	s.engine = newTemplateEngine(toHtml)
	log := s.log.With(zap.String("slug", p.Slug))

	if err := os.MkdirAll(filepath.Join(s.conf.OutDir, postsDirName), os.FileMode(0775)); err != nil {
		return nil, err
	}

	// A bad static_dir fails the run before the index or post changes.
	if err := s.CopyStaticFiles(); err != nil {
		return nil, fmt.Errorf("copy static files: %w", err)
	}

	indexPath := s.indexPath()
	existing, err := os.ReadFile(indexPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	tp := s.conf.templateParam()
	postHtml, renderedBody, err := s.engine.renderPost(tp, p)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.Slug, err)
	}
	s.renderCache[p.Slug] = renderedBody

	cardHtml, err := s.engine.renderCard(p, renderedBody, s.conf.ExcerptLength)
	if err != nil {
		return nil, fmt.Errorf("render card %s: %w", p.Slug, err)
	}
	scaffold, err := s.engine.renderScaffold(tp)
	if err != nil {
		return nil, fmt.Errorf("render index scaffold: %w", err)
	}

	update, err := upsertCard(string(existing), scaffold, cardHtml, p.Slug)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", indexPath, err)
	}

	if update.Scaffolded && strings.TrimSpace(string(existing)) != "" {
		backup := indexPath + ".bak"
		log.Warn("Index has no card list, replacing it with a fresh scaffold",
			zap.String("index", indexPath), zap.String("backup", backup))
		if err := writeFileAtomic(backup, existing); err != nil {
			return nil, err
		}
	}
	if update.Replaced > 0 {
		log.Info("Replacing existing card", zap.Int("removed", update.Replaced))
	}

	if err := writeFileAtomic(indexPath, []byte(update.HTML)); err != nil {
		return nil, err
	}
	postPath := s.postPath(p.Slug)
	if err := writeFileAtomic(postPath, []byte(postHtml)); err != nil {
		return nil, err
	}
	log.Info("Published post", zap.String("post", postPath), zap.Int("cards", len(update.Cards)))

	if err := s.RenderAtom(update.Cards); err != nil {
		return nil, err
	}

	return &publishResult{
		PostPath:  postPath,
		IndexPath: indexPath,
		Cards:     update.Cards,
	}, nil
}

// CopyStaticFiles seeds the outdir with the configured static files. Files
// that already exist in the outdir are left alone.
func (s *Site) CopyStaticFiles() error {
	srcDir := s.conf.StaticFilesDir
	if srcDir == "" {
		return nil
	}
	s.log.Debug("Copying static files", zap.String("from", srcDir), zap.String("to", s.conf.OutDir))
	return copy.Copy(srcDir, s.conf.OutDir, copy.Options{
		Skip: func(srcinfo os.FileInfo, src, dest string) (bool, error) {
			if srcinfo.IsDir() {
				return false, nil
			}
			_, err := os.Stat(dest)
			return err == nil, nil
		},
	})
}

// writeFileAtomic replaces path with data through a temporary file in the same
// directory, so readers never see a half-written page.
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), os.FileMode(0664)); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
