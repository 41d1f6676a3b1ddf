package extract

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SelectSection returns the normalized text of the section introduced by
// the first heading whose text contains anchor (case-insensitive). The
// section runs from that heading up to the next heading of the same or
// higher rank. Headings are h1..h6; if none matches, dt, strong, b and
// caption elements are tried as rank-7 headings; a strong or b element
// only ends such a section when it opens its block. When no heading contains
// anchor the whole page is returned, as NormalizeHTML would.
func SelectSection(raw, anchor string) string {
	anchor = strings.ToLower(strings.TrimSpace(anchor))
	if anchor == "" {
		return NormalizeHTML(raw)
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return NormalizeHTML(raw)
	}

	head := findHeading(doc, anchor, false)
	if head == nil {
		head = findHeading(doc, anchor, true)
	}
	if head == nil {
		return NormalizeHTML(raw)
	}
	rank := headingRank(head.DataAtom, true)

	var sb strings.Builder
	state := 0 // 0 before, 1 collecting, 2 done
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if state == 2 {
			return
		}
		if n == head {
			sb.WriteString(collectText(n))
			sb.WriteByte(' ')
			state = 1
			return
		}
		switch n.Type {
		case html.TextNode:
			if state == 1 {
				sb.WriteString(n.Data)
			}
			return
		case html.ElementNode:
			if isHidden(n.DataAtom) {
				return
			}
			if state == 1 {
				if r := headingRank(n.DataAtom, rank == 7); r > 0 && r <= rank && (r < 7 || leadsBlock(n)) {
					state = 2
					return
				}
				if isBlock(n.DataAtom) {
					sb.WriteByte(' ')
					defer sb.WriteByte(' ')
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return CleanText(sb.String())
}

// leadsBlock reports whether a pseudo-heading opens its enclosing block,
// so inline emphasis inside running text does not end a section. dt and
// caption always qualify.
func leadsBlock(n *html.Node) bool {
	if n.DataAtom != atom.Strong && n.DataAtom != atom.B {
		return true
	}
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if CleanText(collectText(s)) != "" {
				return false
			}
		}
		p := cur.Parent
		if p.Type == html.DocumentNode || p.DataAtom == atom.Body || isBlock(p.DataAtom) {
			return true
		}
	}
	return true
}

func findHeading(n *html.Node, anchor string, loose bool) *html.Node {
	if n.Type == html.ElementNode && headingRank(n.DataAtom, loose) > 0 {
		if (!loose || headingRank(n.DataAtom, false) == 0) &&
			strings.Contains(strings.ToLower(CleanText(collectText(n))), anchor) {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if h := findHeading(c, anchor, loose); h != nil {
			return h
		}
	}
	return nil
}

// headingRank returns 1..6 for h1..h6, 7 for pseudo-headings when loose,
// and 0 otherwise.
func headingRank(a atom.Atom, loose bool) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	case atom.Dt, atom.Strong, atom.B, atom.Caption:
		if loose {
			return 7
		}
	}
	return 0
}
