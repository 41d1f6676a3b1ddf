package scan

import (
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// maxNewItems caps Result.NewItems.
const maxNewItems = 5

// Result is the outcome of scanning one source. It is never persisted.
type Result struct {
	SourceKey      string         `json:"source_key"`
	URL            string         `json:"url"`
	Country        string         `json:"country"`
	Tier           int            `json:"tier"`
	Strategy       store.Strategy `json:"strategy"`
	Changed        bool           `json:"changed"`
	Error          string         `json:"error,omitempty"`
	ExtractedDates []string       `json:"extracted_dates"`
	MatchedItems   []*store.Item  `json:"matched_items"`
	UncertainItems []*store.Item  `json:"uncertain_items"`
	CheckedAt      int64          `json:"checked_at"` // unix ms

	// Strategy-specific extras.
	NewItems       []extract.Link `json:"new_items,omitempty"`       // LIST_ITEMS, when changed
	KeywordMatches *int           `json:"keyword_matches,omitempty"` // nil when no keyword list applies
	OCRExecuted    bool           `json:"ocr_executed,omitempty"`
	OCRText        string         `json:"ocr_text,omitempty"`
	ImageURLs      []string       `json:"image_urls,omitempty"`
}

func newResult(src *store.Source) *Result {
	return &Result{
		SourceKey:      src.Key,
		URL:            src.URL,
		Country:        src.Country,
		Tier:           src.Tier,
		Strategy:       src.Strategy,
		ExtractedDates: []string{},
		MatchedItems:   []*store.Item{},
		UncertainItems: []*store.Item{},
	}
}

func errorResult(src *store.Source, err error) *Result {
	r := newResult(src)
	r.Error = err.Error()
	return r
}

func (r *Result) setDates(found []string) {
	if found != nil {
		r.ExtractedDates = found
	}
}

// setMatches stores matcher output, keeping empty lists non-nil.
func (r *Result) setMatches(matched, uncertain []*store.Item) {
	if matched != nil {
		r.MatchedItems = matched
	}
	if uncertain != nil {
		r.UncertainItems = uncertain
	}
}

func intPtr(n int) *int { return &n }

// Outcome is what a Handler hands back to the engine: the result, the
// fingerprint to persist and, when the scan warrants one, a snapshot.
type Outcome struct {
	Result      *Result
	Fingerprint string
	Snapshot    *store.Snapshot
}
