package main

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type category string

func (c category) String() string { return string(c) }

func (c category) Id() string { return slugify(c.String()) }

// tagPair attaches a post to a category and, optionally, one of its
// subcategories.
type tagPair struct {
	Category    category
	Subcategory category
}

func (t tagPair) HasSubcategory() bool { return t.Subcategory.Id() != "" }

func (t tagPair) String() string {
	if !t.HasSubcategory() {
		return t.Category.String()
	}
	return t.Category.String() + " / " + t.Subcategory.String()
}

// parseTagPair reads the "Category|Subcategory" form taken by --also. The
// subcategory half may be empty or missing.
func parseTagPair(s string) (tagPair, error) {
	cat, sub, _ := strings.Cut(s, "|")
	t := tagPair{
		Category:    category(strings.TrimSpace(cat)),
		Subcategory: category(strings.TrimSpace(sub)),
	}
	if err := t.validate(); err != nil {
		return tagPair{}, fmt.Errorf("invalid tag pair %q: %w", s, err)
	}
	return t, nil
}

// validate rejects names that would leave an empty or meaningless id in
// data-cat, data-sub and the filter links.
func (t tagPair) validate() error {
	if !hasSlugText(t.Category.Id()) {
		return fmt.Errorf("category %q has no letters or digits", t.Category)
	}
	if t.Subcategory != "" && !hasSlugText(t.Subcategory.Id()) {
		return fmt.Errorf("subcategory %q has no letters or digits", t.Subcategory)
	}
	return nil
}

type tagPairs []tagPair

// CategoryIds and SubcategoryIds are positionally aligned, so a pair without a
// subcategory leaves an empty element in the second list.
func (ts tagPairs) CategoryIds() string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.Category.Id()
	}
	return strings.Join(ids, ",")
}

func (ts tagPairs) SubcategoryIds() string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.Subcategory.Id()
	}
	return strings.Join(ids, ",")
}

// dedupe drops repeated pairs, comparing by id.
func (ts tagPairs) dedupe() tagPairs {
	out := make(tagPairs, 0, len(ts))
	seen := make(map[string]bool, len(ts))
	for _, t := range ts {
		key := t.Category.Id() + "|" + t.Subcategory.Id()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// menuCategory is one top-level entry of the site navigation.
type menuCategory struct {
	Name     category   `mapstructure:"name"`
	Children []category `mapstructure:"children"`
}

type categoryWithCards struct {
	Category category
	Cards    cards
}

// Cards grouped by category. Create using groupByCategory, which sorts by
// number of cards per category, then by position of the newest card.
type cardsByCategory []categoryWithCards

func (cc *cardsByCategory) addCard(c category, cd *card) {
	for i, cat := range *cc {
		if cat.Category.Id() == c.Id() {
			cat.Cards = append(cat.Cards, cd)
			(*cc)[i] = cat
			return
		}
	}

	newCategoryWithCards := categoryWithCards{c, make(cards, 1, 10)}
	newCategoryWithCards.Cards[0] = cd
	*cc = append(*cc, newCategoryWithCards)
}

func (cc cardsByCategory) String() string {
	b := new(bytes.Buffer)
	for _, c := range cc {
		b.WriteString(c.Category.String())
		b.WriteString(": ")
		for i, cd := range c.Cards {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(cd.Title)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func groupByCategory(cs cards) cardsByCategory {
	byCat := make(cardsByCategory, 0, 20)
	position := make(map[*card]int, len(cs))

	for i, cd := range cs {
		position[cd] = i
		seen := make(map[string]bool)
		for _, t := range cd.Categories {
			if seen[t.Category.Id()] {
				continue
			}
			seen[t.Category.Id()] = true
			byCat.addCard(t.Category, cd)
		}
	}

	// The index is newest first, so a lower position means a newer card.
	slices.SortStableFunc(byCat, func(a, b categoryWithCards) int {
		if c := cmp.Compare(len(b.Cards), len(a.Cards)); c != 0 {
			return c
		}
		return cmp.Compare(position[a.Cards[0]], position[b.Cards[0]])
	})

	return byCat
}
