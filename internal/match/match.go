// Package match decides which registered items a scan affects.
//
// Two policies exist: exact-date matching for text sources, where any date
// on the page equal to an item's MHD is a hit, and product-grouped matching
// for OCR transcripts, where the item's model must also be the product the
// date is listed under.
package match

import (
	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// ExactDate returns the items whose MHD is among dates. When nothing
// matched, no date was extracted, and the source changed, every item is
// returned as uncertain: the change cannot be ruled out as relevant.
// uncertain is always empty when matched is not. changed only gates the
// uncertain fallback, so an unchanged source still reports exact-date hits
// on its current content.
func ExactDate(dates []string, items []*store.Item, changed bool) (matched, uncertain []*store.Item) {
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	for _, it := range items {
		if _, ok := set[it.MHD]; ok {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 && len(dates) == 0 && changed {
		uncertain = append(uncertain, items...)
	}
	return matched, uncertain
}

// ProductGrouped returns the items listed in groups: an item matches when
// a group resolved to the item's model key lists the item's MHD. Items in
// groups without a resolved key never match. Every other item is returned
// in notFound.
func ProductGrouped(groups []ocr.ProductGroup, items []*store.Item) (matched, notFound []*store.Item) {
	listed := make(map[string]map[string]struct{})
	for _, g := range groups {
		if g.ModelKey == "" {
			continue
		}
		if listed[g.ModelKey] == nil {
			listed[g.ModelKey] = make(map[string]struct{})
		}
		for _, d := range g.MHDs {
			listed[g.ModelKey][d] = struct{}{}
		}
	}
	for _, it := range items {
		if _, ok := listed[it.ModelKey][it.MHD]; ok {
			matched = append(matched, it)
		} else {
			notFound = append(notFound, it)
		}
	}
	return matched, notFound
}
