package match

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/store"
)

func ids(items []*store.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

var testItems = []*store.Item{
	{ID: "i1", ModelKey: "pronutra_pre", MHD: "15-06-2026"},
	{ID: "i2", ModelKey: "pronutra_1", MHD: "15-06-2026"},
	{ID: "i3", ModelKey: "pronutra_2", MHD: "01-09-2026"},
}

func TestExactDate(t *testing.T) {
	tests := []struct {
		name          string
		dates         []string
		changed       bool
		wantMatched   []string
		wantUncertain []string
	}{
		{
			name:        "date hits every item with that MHD",
			dates:       []string{"15-06-2026", "20-12-2026"},
			changed:     true,
			wantMatched: []string{"i1", "i2"},
		},
		{
			name:    "dates present but none match",
			dates:   []string{"20-12-2026"},
			changed: true,
		},
		{
			name:          "changed without dates is uncertain",
			changed:       true,
			wantUncertain: []string{"i1", "i2", "i3"},
		},
		{
			name: "unchanged without dates is quiet",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, uncertain := ExactDate(tt.dates, testItems, tt.changed)
			if diff := cmp.Diff(tt.wantMatched, ids(matched)); diff != "" {
				t.Errorf("matched (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantUncertain, ids(uncertain)); diff != "" {
				t.Errorf("uncertain (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExactDate_NoItems(t *testing.T) {
	matched, uncertain := ExactDate(nil, nil, true)
	if len(matched) != 0 || len(uncertain) != 0 {
		t.Fatalf("got %v %v", matched, uncertain)
	}
}

func TestProductGrouped(t *testing.T) {
	// WHAT: A date only counts when it is listed under the item's own model.
	// WHY: One notice image lists several products with different lots.
	groups := []ocr.ProductGroup{
		{Name: "앱타밀 프로누트라 프레", ModelKey: "pronutra_pre", MHDs: []string{"15-06-2026"}},
		{Name: "앱타밀 프로누트라 2", ModelKey: "pronutra_2", MHDs: []string{"15-06-2026"}},
		{Name: "알 수 없는 제품", MHDs: []string{"01-09-2026"}},
	}
	matched, notFound := ProductGrouped(groups, testItems)
	if diff := cmp.Diff([]string{"i1"}, ids(matched)); diff != "" {
		t.Errorf("matched (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"i2", "i3"}, ids(notFound)); diff != "" {
		t.Errorf("notFound (-want +got):\n%s", diff)
	}
}

func TestProductGrouped_Empty(t *testing.T) {
	matched, notFound := ProductGrouped(nil, testItems)
	if len(matched) != 0 || len(notFound) != len(testItems) {
		t.Fatalf("matched=%d notFound=%d", len(matched), len(notFound))
	}
}
