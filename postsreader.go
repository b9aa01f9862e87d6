package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
)

var (
	errMissingContent = errors.New("provide --content_file or --content_text")
	errMissingField   = errors.New("missing required field")
)

// postInput is what the command line says about a post. Fields left empty may
// be filled from the content file's front matter.
type postInput struct {
	Title       string
	Category    string
	Subcategory string
	Also        []string
	Date        string
	ContentFile string
	ContentText string
	Format      string
}

type postFrontMatter struct {
	Title       string   `yaml:"title"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Also        []string `yaml:"also"`
	Date        string   `yaml:"date"`
}

func readPost(in postInput) (*post, error) {
	if in.ContentFile != "" && in.ContentText != "" {
		return nil, fmt.Errorf("--content_file and --content_text are mutually exclusive")
	}

	content, err := readContent(&in)
	if err != nil {
		return nil, err
	}

	var missing []error
	for _, f := range []struct{ flag, val string }{
		{"title", in.Title},
		{"category", in.Category},
		{"date", in.Date},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, fmt.Errorf("%w: --%s", errMissingField, f.flag))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	primary := tagPair{
		Category:    category(strings.TrimSpace(in.Category)),
		Subcategory: category(strings.TrimSpace(in.Subcategory)),
	}
	if err := primary.validate(); err != nil {
		return nil, err
	}
	categories := tagPairs{primary}
	for _, also := range in.Also {
		t, err := parseTagPair(also)
		if err != nil {
			return nil, err
		}
		categories = append(categories, t)
	}

	markdown, err := resolveBodyFormat(in.Format, in.ContentFile)
	if err != nil {
		return nil, err
	}

	p := newPost(strings.TrimSpace(in.Title), strings.TrimSpace(in.Date), content, categories, markdown)
	if !hasSlugText(p.Slug) {
		return nil, fmt.Errorf("title %q has no characters usable in a slug", in.Title)
	}
	return p, nil
}

// readContent loads the body from whichever source is set. A content file's
// front matter fills fields the flags left empty.
func readContent(in *postInput) (string, error) {
	if in.ContentFile != "" {
		raw, err := os.ReadFile(in.ContentFile)
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s does not exist", errMissingContent, in.ContentFile)
		}
		if err != nil {
			return "", err
		}

		var fm postFrontMatter
		body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
		if err != nil {
			// Not front matter after all; treat the whole file as the body.
			body = raw
		} else {
			in.mergeFrontMatter(fm)
		}

		content := strings.TrimSpace(string(body))
		if content == "" {
			return "", fmt.Errorf("%w: %s is empty", errMissingContent, in.ContentFile)
		}
		return content, nil
	}

	content := strings.TrimSpace(in.ContentText)
	if content == "" {
		return "", errMissingContent
	}
	return content, nil
}

func (in *postInput) mergeFrontMatter(fm postFrontMatter) {
	fill := func(dst *string, val string) {
		if *dst == "" {
			*dst = strings.TrimSpace(val)
		}
	}
	fill(&in.Title, fm.Title)
	fill(&in.Category, fm.Category)
	fill(&in.Subcategory, fm.Subcategory)
	fill(&in.Date, fm.Date)
	if len(in.Also) == 0 {
		in.Also = fm.Also
	}
}
