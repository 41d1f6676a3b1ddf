package store

// Strategy names how a source is scanned.
type Strategy string

// The closed set of scan strategies.
const (
	StrategyHTMLText       Strategy = "HTML_TEXT"
	StrategySectionHash    Strategy = "SECTION_HASH"
	StrategyListItems      Strategy = "LIST_ITEMS"
	StrategyURLCheck       Strategy = "URL_CHECK"
	StrategyContentKeyword Strategy = "CONTENT_KEYWORD"
	StrategyImageOCR       Strategy = "IMAGE_OCR"
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{
	StrategyHTMLText,
	StrategySectionHash,
	StrategyListItems,
	StrategyURLCheck,
	StrategyContentKeyword,
	StrategyImageOCR,
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	for _, v := range Strategies {
		if s == v {
			return true
		}
	}
	return false
}

// Source is a monitored endpoint. LastHash and LastCheckedAt are scan
// state; everything else is registry configuration.
type Source struct {
	Key            string   `json:"key"`
	Position       int      `json:"position"` // registry order
	Country        string   `json:"country"`
	Tier           int      `json:"tier"`
	URL            string   `json:"url"`
	Strategy       Strategy `json:"strategy"`
	Keywords       []string `json:"keywords,omitempty"`
	SectionHeading string   `json:"section_heading,omitempty"`
	ImageSelector  string   `json:"image_selector,omitempty"`
	Label          string   `json:"label,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Enabled        bool     `json:"enabled"`
	LastHash       string   `json:"last_hash,omitempty"`       // "" until first successful scan
	LastCheckedAt  *int64   `json:"last_checked_at,omitempty"` // unix ms
	CreatedAt      int64    `json:"created_at"`
	UpdatedAt      int64    `json:"updated_at"`
}

// Item is a product lot registered for monitoring.
type Item struct {
	ID         string `json:"id"`
	ModelKey   string `json:"model_key"`
	ModelLabel string `json:"model_label"`
	MHD        string `json:"mhd"` // DD-MM-YYYY
	CreatedAt  int64  `json:"created_at"`
}

// Snapshot records the content of a source at a detected change.
type Snapshot struct {
	ID             string   `json:"id"`
	SourceKey      string   `json:"source_key"`
	TakenAt        int64    `json:"taken_at"`
	Hash           string   `json:"hash"`
	RawText        string   `json:"raw_text"`
	Markdown       string   `json:"markdown,omitempty"`
	ExtractedDates []string `json:"extracted_dates"`
	Diff           string   `json:"diff,omitempty"` // versus the previous retained snapshot of the source
}
