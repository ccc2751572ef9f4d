// Package richtext turns the HTML markup of rich notes into plain text for
// searching and previews.
package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aretw0/notegrid/pkg/core"
)

// Extractor strips markup from rich content. Plain content is returned as is.
type Extractor struct{}

// PlainText returns the visible text of a note.
func (Extractor) PlainText(n core.Note) string {
	if n.ContentType == core.ContentPlain {
		return n.Content
	}
	return Strip(n.Content)
}

// Strip removes every tag from markup, decodes entities and collapses
// whitespace. Block level elements and <br> separate words.
func Strip(markup string) string {
	if markup == "" {
		return ""
	}

	var b strings.Builder
	skip := 0
	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input: keep what was read so far.
			return collapse(b.String())

		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skip++
				continue
			}
			if breaks(a) {
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
				continue
			}
			if breaks(a) {
				b.WriteByte(' ')
			}
		}
	}
}

func breaks(a atom.Atom) bool {
	switch a {
	case atom.Br, atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Tr, atom.Td, atom.Th, atom.Hr:
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Preview returns at most limit runes of the note's plain text, cut on a
// word boundary when possible and suffixed with an ellipsis when shortened.
func Preview(n core.Note, limit int) string {
	text := Extractor{}.PlainText(n)
	if n.ContentType == core.ContentPlain {
		text = collapse(text)
	}
	return Truncate(text, limit)
}

// Truncate shortens s to at most limit runes including the ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}

	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + "…"
}
