package recall

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/recallwatch/horosafe"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// SourceDef is the registry configuration of one source.
type SourceDef struct {
	Key            string         `yaml:"key"`
	Country        string         `yaml:"country"`
	Tier           int            `yaml:"tier"`
	URL            string         `yaml:"url"`
	Strategy       store.Strategy `yaml:"strategy"`
	Keywords       []string       `yaml:"keywords"`
	SectionHeading string         `yaml:"section_heading"`
	ImageSelector  string         `yaml:"image_selector"`
	Label          string         `yaml:"label"`
	Notes          string         `yaml:"notes"`
	Disabled       bool           `yaml:"disabled"`
}

// Catalog lists the monitored sources and the known product models.
type Catalog struct {
	ContentKeywords []string       `yaml:"content_keywords"`
	Sources         []SourceDef    `yaml:"sources"`
	Models          []ProductModel `yaml:"models"`
}

// DefaultCatalog returns the embedded catalogue.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalogue file. An empty path loads the embedded one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalogue.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks keys, URLs, strategies and selectors.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if err := horosafe.ValidateIdentifier(s.Key); err != nil {
			return fmt.Errorf("%w: source %d: %v", ErrInvalidCatalog, i, err)
		}
		if seen[s.Key] {
			return fmt.Errorf("%w: duplicate source %q", ErrInvalidCatalog, s.Key)
		}
		seen[s.Key] = true
		u, err := url.Parse(s.URL)
		if err == nil {
			err = horosafe.ValidateScheme(u)
		}
		if err != nil {
			return fmt.Errorf("%w: source %s: bad url %q: %v", ErrInvalidCatalog, s.Key, s.URL, err)
		}
		if !s.Strategy.Valid() {
			return fmt.Errorf("%w: source %s: unknown strategy %q", ErrInvalidCatalog, s.Key, s.Strategy)
		}
		if s.Tier != 1 && s.Tier != 2 {
			return fmt.Errorf("%w: source %s: tier must be 1 or 2", ErrInvalidCatalog, s.Key)
		}
		if strings.TrimSpace(s.Country) == "" {
			return fmt.Errorf("%w: source %s: country required", ErrInvalidCatalog, s.Key)
		}
		if err := extract.ValidSelector(s.ImageSelector); err != nil {
			return fmt.Errorf("%w: source %s: %v", ErrInvalidCatalog, s.Key, err)
		}
	}

	models := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if err := horosafe.ValidateIdentifier(m.Key); err != nil {
			return fmt.Errorf("%w: model: %v", ErrInvalidCatalog, err)
		}
		if models[m.Key] {
			return fmt.Errorf("%w: duplicate model %q", ErrInvalidCatalog, m.Key)
		}
		models[m.Key] = true
	}
	return nil
}

// Model returns the model with key.
func (c *Catalog) Model(key string) (ProductModel, bool) {
	for _, m := range c.Models {
		if m.Key == key {
			return m, true
		}
	}
	return ProductModel{}, false
}

// AliasTable builds the OCR alias table of the catalogue's models.
func (c *Catalog) AliasTable() *ocr.AliasTable {
	byKey := make(map[string][]string, len(c.Models))
	for _, m := range c.Models {
		if len(m.Aliases) > 0 {
			byKey[m.Key] = m.Aliases
		}
	}
	return ocr.NewAliasTable(byKey)
}

// source converts a definition to a store row at registry position pos.
func (d SourceDef) source(pos int) *Source {
	return &Source{
		Key:            d.Key,
		Position:       pos,
		Country:        strings.ToUpper(d.Country),
		Tier:           d.Tier,
		URL:            d.URL,
		Strategy:       d.Strategy,
		Keywords:       d.Keywords,
		SectionHeading: d.SectionHeading,
		ImageSelector:  d.ImageSelector,
		Label:          d.Label,
		Notes:          d.Notes,
		Enabled:        !d.Disabled,
	}
}
