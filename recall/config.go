package recall

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/recallwatch/internal/chat"
	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/ocr"
)

// Config configures the recall service.
type Config struct {
	// Fetch settings shared by every strategy.
	Fetch fetch.Config `yaml:"fetch"`

	// OCR configures the vision service. Transcription is disabled when
	// OCR.Chat.APIKey is empty.
	OCR ocr.Config `yaml:"ocr"`

	// Summary configures the report summary.
	Summary SummaryConfig `yaml:"summary"`

	// Concurrency bounds how many sources are scanned at once.
	Concurrency int `yaml:"concurrency"`

	// SourceTimeout bounds one source scan, OCR included.
	SourceTimeout time.Duration `yaml:"source_timeout"`

	// Interval between scheduled scan cycles.
	Interval time.Duration `yaml:"interval"`

	// Timezone names the report date's zone. Default: Asia/Seoul.
	Timezone string `yaml:"timezone"`
}

// SummaryConfig configures the report summary. No call is made when
// Chat.APIKey is empty; the fallback template is used instead.
type SummaryConfig struct {
	Chat           chat.Config `yaml:"chat"`
	DailyLimit     int         `yaml:"daily_limit"`      // calls per report day. Default: 1.
	MaxPromptChars int         `yaml:"max_prompt_chars"` // Default: 4000.
	MaxTokens      int         `yaml:"max_tokens"`       // Default: 150.
}

func (c *Config) defaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.SourceTimeout <= 0 {
		c.SourceTimeout = 2 * time.Minute
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.Summary.DailyLimit <= 0 {
		c.Summary.DailyLimit = 1
	}
	if c.Summary.MaxPromptChars <= 0 {
		c.Summary.MaxPromptChars = 4000
	}
	if c.Summary.MaxTokens <= 0 {
		c.Summary.MaxTokens = 150
	}
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}

// LoadConfig reads a YAML config file. Missing fields take defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.defaults()
	return &c, nil
}
