package recall

import (
	"github.com/hazyhaar/recallwatch/internal/scan"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// Type aliases so callers don't need to import internal packages.
type (
	Source   = store.Source
	Item     = store.Item
	Snapshot = store.Snapshot
	Strategy = store.Strategy
	Result   = scan.Result
)

// ProductModel is a product line users register lots of.
type ProductModel struct {
	Key     string   `yaml:"key" json:"key"`
	Label   string   `yaml:"label" json:"label"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"` // localized names found in notices
}

// SourceFilter narrows Sources. Zero values match everything.
type SourceFilter struct {
	Tier        int    `json:"tier,omitempty"`
	Country     string `json:"country,omitempty"`
	EnabledOnly bool   `json:"enabled_only,omitempty"`
}

func (f SourceFilter) match(src *Source) bool {
	if f.Tier != 0 && src.Tier != f.Tier {
		return false
	}
	if f.Country != "" && src.Country != f.Country {
		return false
	}
	if f.EnabledOnly && !src.Enabled {
		return false
	}
	return true
}
