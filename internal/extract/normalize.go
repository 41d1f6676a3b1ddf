// Package extract turns fetched HTML into the comparable text, links and
// image references the scan strategies fingerprint and search.
//
// The normalizer never fails: malformed markup degrades to whatever text
// the HTML5 parser recovers, and empty input yields "".
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var multiSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeHTML returns the visible text of raw with script, style and
// noscript content removed and every whitespace run collapsed to a single
// space. Text is taken from <body> when present. Case is preserved.
func NormalizeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return CleanText(raw)
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	return CleanText(collectText(root))
}

// CleanText removes zero-width characters, collapses whitespace and trims.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff', '\u00ad':
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, " "))
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// collectText concatenates text nodes under n. Block-level elements are
// padded with spaces so adjacent paragraphs do not fuse; inline elements
// are not, so "<b>Rück</b>ruf" stays one word.
func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if isHidden(n.DataAtom) {
				return
			}
			if isBlock(n.DataAtom) {
				sb.WriteByte(' ')
				defer sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func isHidden(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Main, atom.Article, atom.Section, atom.Div, atom.P, atom.Br,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Ul, atom.Ol, atom.Li,
		atom.Table, atom.Tr, atom.Td, atom.Th, atom.Dl, atom.Dd, atom.Dt,
		atom.Figure, atom.Figcaption, atom.Details, atom.Summary,
		atom.Header, atom.Footer, atom.Nav, atom.Aside, atom.Hr, atom.Caption:
		return true
	}
	return false
}
