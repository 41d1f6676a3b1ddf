package extract

import (
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Images returns the absolute, deduplicated and sorted URLs of the images
// matched by selector. An empty selector selects every <img>. When the
// selector matches containers, the images inside them are used.
func Images(raw, baseURL, selector string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	if strings.TrimSpace(selector) == "" {
		selector = "img"
	}
	base, _ := url.Parse(baseURL)

	seen := make(map[string]struct{})
	var out []string
	add := func(img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		abs, ok := resolve(base, src)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "img" {
			add(s)
			return
		}
		s.Find("img").Each(func(_ int, img *goquery.Selection) { add(img) })
	})
	slices.Sort(out)
	return out
}

// ValidSelector reports whether selector parses as CSS. Empty is valid.
func ValidSelector(selector string) error {
	if strings.TrimSpace(selector) == "" {
		return nil
	}
	_, err := cascadia.ParseGroup(selector)
	return err
}
