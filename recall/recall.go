// Package recall is the recall watch service: it keeps the source registry
// in sync with the catalogue, manages registered items, runs scan cycles
// and turns their results into reports. It exposes the same operations
// over HTTP and MCP.
package recall

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hazyhaar/recallwatch/internal/chat"
	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/scan"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// Service is the recall watch orchestrator.
type Service struct {
	store      *store.Store
	catalog    *Catalog
	engine     *scan.Engine
	summarizer *Summarizer
	config     *Config
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time

	mu   sync.Mutex
	last *Report

	// set by options, consumed by New
	fetcher   scan.Fetcher
	extractor ocr.Extractor
	complete  CompleteFunc
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f scan.Fetcher) ServiceOption {
	return func(s *Service) { s.fetcher = f }
}

// WithOCR sets the image transcriber, overriding Config.OCR.
func WithOCR(ex ocr.Extractor) ServiceOption {
	return func(s *Service) { s.extractor = ex }
}

// WithSummary sets the summary model call, overriding Config.Summary.Chat.
func WithSummary(fn CompleteFunc) ServiceOption {
	return func(s *Service) { s.complete = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// New creates a Service over st. A nil catalog selects the embedded one.
func New(st *store.Store, cat *Catalog, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = defaultConfig()
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		var err error
		if cat, err = DefaultCatalog(); err != nil {
			return nil, err
		}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("recall: timezone %q: %w", cfg.Timezone, err)
	}

	svc := &Service{
		store:   st,
		catalog: cat,
		config:  cfg,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.fetcher == nil {
		svc.fetcher = fetch.New(cfg.Fetch)
	}
	ocrConcurrency := cfg.OCR.Concurrency
	if svc.extractor == nil && cfg.OCR.Chat.APIKey != "" {
		client := ocr.New(cfg.OCR, logger)
		svc.extractor = client
		ocrConcurrency = client.Concurrency()
	}
	if svc.complete == nil && cfg.Summary.Chat.APIKey != "" {
		svc.complete = chatSummary(chat.New(cfg.Summary.Chat, logger), cfg.Summary.MaxTokens)
	}

	svc.engine = scan.New(st, svc.fetcher, scan.Options{
		Concurrency:     cfg.Concurrency,
		SourceTimeout:   cfg.SourceTimeout,
		DefaultKeywords: cat.ContentKeywords,
		OCR:             svc.extractor,
		OCRConcurrency:  ocrConcurrency,
		Aliases:         cat.AliasTable(),
		Logger:          logger,
		Now:             svc.now,
	})
	svc.summarizer = NewSummarizer(svc.complete, NewCallBudget(cfg.Summary.DailyLimit), cfg.Summary.MaxPromptChars, logger)
	return svc, nil
}

func chatSummary(c *chat.Client, maxTokens int) CompleteFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := c.Send(ctx, chat.Request{
			Model:       c.Model(),
			Messages:    []chat.Message{{Role: "user", Content: []chat.ContentPart{chat.Text(prompt)}}},
			MaxTokens:   maxTokens,
			Temperature: 0.3,
		})
		if err != nil {
			return "", err
		}
		return resp.Choices[0].Message.Content, nil
	}
}

// --- Sources ---

// SyncSources writes the catalogue's sources into the store in catalogue
// order and removes stored sources the catalogue no longer lists. Scan
// state of kept sources is preserved.
func (svc *Service) SyncSources(ctx context.Context) error {
	keep := make(map[string]bool, len(svc.catalog.Sources))
	for i, def := range svc.catalog.Sources {
		if err := svc.store.UpsertSource(ctx, def.source(i)); err != nil {
			return err
		}
		keep[def.Key] = true
	}

	existing, err := svc.store.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, src := range existing {
		if keep[src.Key] {
			continue
		}
		if err := svc.store.DeleteSource(ctx, src.Key); err != nil {
			return err
		}
		svc.logger.Info("recall: source removed from catalog", "source_key", src.Key)
	}
	svc.logger.Info("recall: sources synced", "count", len(svc.catalog.Sources))
	return nil
}

// Sources returns stored sources matching f, in registry order.
func (svc *Service) Sources(ctx context.Context, f SourceFilter) ([]*Source, error) {
	all, err := svc.store.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	f.Country = strings.ToUpper(f.Country)
	out := []*Source{}
	for _, src := range all {
		if f.match(src) {
			out = append(out, src)
		}
	}
	return out, nil
}

// Source returns the stored source with key.
func (svc *Service) Source(ctx context.Context, key string) (*Source, error) {
	return svc.store.GetSource(ctx, key)
}

// --- Items ---

// Models returns the catalogue's product models.
func (svc *Service) Models() []ProductModel {
	return svc.catalog.Models
}

// AddItem registers a lot of modelKey. mhd accepts DD-MM-YYYY, DD.MM.YYYY,
// DD/MM/YYYY, YYYY-MM-DD and "DD MM YYYY".
func (svc *Service) AddItem(ctx context.Context, modelKey, mhd string) (*Item, error) {
	model, ok := svc.catalog.Model(strings.TrimSpace(modelKey))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, modelKey)
	}
	norm, ok := dates.ParseUserInput(mhd)
	if !ok {
		return nil, fmt.Errorf("%w: MHD %q, expected DD-MM-YYYY", ErrInvalidInput, mhd)
	}
	it := &Item{ModelKey: model.Key, ModelLabel: model.Label, MHD: norm}
	if err := svc.store.AddItem(ctx, it); err != nil {
		return nil, err
	}
	svc.logger.Info("recall: item registered", "item_id", it.ID, "model", it.ModelKey, "mhd", it.MHD)
	return it, nil
}

// RemoveItem deletes a registered item.
func (svc *Service) RemoveItem(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: item id required", ErrInvalidInput)
	}
	return svc.store.RemoveItem(ctx, id)
}

// Items returns every registered item, oldest first.
func (svc *Service) Items(ctx context.Context) ([]*Item, error) {
	items, err := svc.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	return items, nil
}

// --- Scans ---

// Scan runs one cycle over the enabled sources and returns its report.
func (svc *Service) Scan(ctx context.Context) (*Report, error) {
	sources, err := svc.Sources(ctx, SourceFilter{EnabledOnly: true})
	if err != nil {
		return nil, err
	}
	items, err := svc.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	start := svc.now()
	results, err := svc.engine.ScanAll(ctx, sources, items)
	if err != nil {
		return nil, fmt.Errorf("scan cycle: %w", err)
	}

	rep := BuildReport(results, sources, items, svc.now(), svc.loc)
	rep.Summary = svc.summarizer.Summarize(ctx, rep.Date, results, rep.MatchedCount, rep.UncertainCount)
	svc.mu.Lock()
	svc.last = rep
	svc.mu.Unlock()
	svc.logger.Info("recall: scan cycle done",
		"sources", len(sources),
		"changed", rep.ChangedSources,
		"errors", rep.ErrorSources,
		"risk", string(rep.RiskLevel),
		"duration_ms", svc.now().Sub(start).Milliseconds(),
	)
	return rep, nil
}

// LastReport returns the report of the most recent cycle, or nil.
func (svc *Service) LastReport() *Report {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.last
}

// ScanSource scans one source on demand. forceOCR transcribes images even
// when the image set did not change.
func (svc *Service) ScanSource(ctx context.Context, key string, forceOCR bool) (*Result, error) {
	src, err := svc.store.GetSource(ctx, key)
	if err != nil {
		return nil, err
	}
	items, err := svc.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return svc.engine.ScanOne(ctx, src, items, forceOCR)
}

// Snapshots returns retained snapshots, newest first, optionally for one
// source.
func (svc *Service) Snapshots(ctx context.Context, sourceKey string) ([]*Snapshot, error) {
	snaps, err := svc.store.ListSnapshots(ctx, sourceKey)
	if err != nil {
		return nil, err
	}
	if snaps == nil {
		snaps = []*Snapshot{}
	}
	return snaps, nil
}
