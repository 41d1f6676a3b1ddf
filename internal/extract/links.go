package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/recallwatch/internal/dates"
)

// Link is one anchor found on a listing page.
type Link struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	DateText string `json:"date_text,omitempty"`
}

const maxFallbackTitle = 100

// Links returns every navigable anchor in raw with its URL resolved against
// baseURL. The title is the anchor text, falling back to the title
// attribute, an image alt, then the enclosing element's text truncated to
// 100 runes. DateText is the first date found in the enclosing row (li, tr,
// article, dd, p), in DD-MM-YYYY form. Links are deduplicated on URL+title
// in document order.
func Links(raw, baseURL string) []Link {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	base, _ := url.Parse(baseURL)

	seen := make(map[string]struct{})
	var out []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := resolve(base, href)
		if !ok {
			return
		}

		title := CleanText(a.Text())
		if title == "" {
			title = strings.TrimSpace(a.AttrOr("title", ""))
		}
		if title == "" {
			title = strings.TrimSpace(a.Find("img[alt]").First().AttrOr("alt", ""))
		}
		if title == "" {
			title = truncateRunes(CleanText(a.Parent().Text()), maxFallbackTitle)
		}

		row := a.Closest("li, tr, article, dd, p")
		if row.Length() == 0 {
			row = a.Parent()
		}
		var dateText string
		if found := dates.Extract(CleanText(row.Text())); len(found) > 0 {
			dateText = found[0]
		}

		key := abs + "|" + title
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, Link{URL: abs, Title: title, DateText: dateText})
	})
	return out
}

// resolve makes href absolute against base. Fragments and non-navigable
// schemes are rejected.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, p := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref.String(), true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
