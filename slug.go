package main

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Unicode whitespace, not just ASCII: a no-break space in a title separates
// words like any other space.
const spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9` + spaceClass + `-]`)
	whitespace   = regexp.MustCompile(`[` + spaceClass + `]+`)
)

func isSlugSpace(r rune) bool {
	return unicode.IsSpace(r) || r >= 0x1c && r <= 0x1f
}

// slugify turns a title or category name into the id used for file names,
// card identity and filter fragments. Spaces left at the edges once other
// characters are stripped still become hyphens, so ids match the ones in
// indexes written before.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimFunc(s, isSlugSpace))
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, ",", " ")
	s = nonSlugChars.ReplaceAllString(s, "")
	return whitespace.ReplaceAllString(s, "-")
}

// hasSlugText reports whether id carries a letter or digit, not just hyphens.
func hasSlugText(id string) bool {
	return strings.ContainsFunc(id, func(r rune) bool {
		return 'a' <= r && r <= 'z' || '0' <= r && r <= '9'
	})
}

// escape entity-escapes text for interpolation into markup, quotes included.
func escape(s string) string {
	return html.EscapeString(s)
}

func collapseWhitespace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimFunc(s, isSlugSpace), " ")
}
