// Package scan runs the recall detection strategies against monitored
// sources.
//
// Each source is scanned by the Handler registered for its strategy. A
// handler fetches, decides whether the source changed, extracts dates and
// matches them against registered items. The Engine owns everything around
// that: per-source deadlines, turning failures into error results, and
// persisting fingerprints and snapshots. Sources without a registered
// handler are scanned as HTML_TEXT.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// Store is the persistence the engine writes to.
type Store interface {
	SaveSourceState(ctx context.Context, key, fingerprint string, checkedAt time.Time) error
	AppendSnapshot(ctx context.Context, snap *store.Snapshot) error
}

// Fetcher performs the outbound requests. *fetch.Fetcher implements it.
type Fetcher interface {
	Get(ctx context.Context, url string) (*fetch.Response, error)
	Head(ctx context.Context, url string) (int, error)
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	Concurrency     int           // sources scanned at once. Default: 4.
	SourceTimeout   time.Duration // deadline for one source. Default: 2m.
	DefaultKeywords []string      // CONTENT_KEYWORD sources without keywords
	OCR             ocr.Extractor // nil disables transcription
	OCRConcurrency  int           // images transcribed at once. Default: 3.
	Aliases         *ocr.AliasTable
	Logger          *slog.Logger
	Now             func() time.Time
}

// DefaultContentKeywords applies when neither the source nor the options
// name any.
var DefaultContentKeywords = []string{"aptamil", "rückruf", "recall"}

func (o *Options) defaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = 2 * time.Minute
	}
	if len(o.DefaultKeywords) == 0 {
		o.DefaultKeywords = DefaultContentKeywords
	}
	if o.OCRConcurrency <= 0 {
		o.OCRConcurrency = 3
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Engine scans sources.
type Engine struct {
	store    Store
	fetcher  Fetcher
	opts     Options
	logger   *slog.Logger
	handlers map[store.Strategy]Handler
	md       *converter.Converter
}

// New creates an Engine with every strategy registered.
func New(st Store, f Fetcher, opts Options) *Engine {
	opts.defaults()
	return &Engine{
		store:    st,
		fetcher:  f,
		opts:     opts,
		logger:   opts.Logger,
		handlers: defaultHandlers(),
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// RegisterHandler replaces the handler of a strategy.
func (e *Engine) RegisterHandler(s store.Strategy, h Handler) {
	e.handlers[s] = h
}

// ScanOne scans src against items. Fetch and parse failures are reported
// in Result.Error; the returned error is non-nil only when persisting the
// outcome failed.
func (e *Engine) ScanOne(ctx context.Context, src *store.Source, items []*store.Item, forceOCR bool) (*Result, error) {
	log := e.logger.With("source_key", src.Key, "strategy", string(src.Strategy))
	start := e.opts.Now()
	job := &Job{Source: src, Items: items, ForceOCR: forceOCR}

	out, err := e.run(ctx, job)
	if err != nil {
		log.Warn("scan: source failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		res := errorResult(src, err)
		res.CheckedAt = start.UnixMilli()
		return res, nil
	}

	now := e.opts.Now()
	out.Result.CheckedAt = now.UnixMilli()
	if err := e.store.SaveSourceState(ctx, src.Key, out.Fingerprint, now); err != nil {
		return nil, fmt.Errorf("scan %s: %w", src.Key, err)
	}
	if out.Snapshot != nil {
		out.Snapshot.SourceKey = src.Key
		out.Snapshot.TakenAt = now.UnixMilli()
		if err := e.store.AppendSnapshot(ctx, out.Snapshot); err != nil {
			return nil, fmt.Errorf("scan %s: %w", src.Key, err)
		}
	}

	log.Info("scan: source done",
		"changed", out.Result.Changed,
		"dates", len(out.Result.ExtractedDates),
		"matched", len(out.Result.MatchedItems),
		"uncertain", len(out.Result.UncertainItems),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out.Result, nil
}

// run dispatches job to its handler under the per-source deadline. A
// panicking handler is reported as an error.
func (e *Engine) run(ctx context.Context, job *Job) (out *Outcome, err error) {
	h, ok := e.handlers[job.Source.Strategy]
	if !ok {
		e.logger.Debug("scan: no handler for strategy, falling back to HTML_TEXT",
			"source_key", job.Source.Key, "strategy", string(job.Source.Strategy))
		h = e.handlers[store.StrategyHTMLText]
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.SourceTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("scan panic: %v", r)
		}
	}()

	out, err = h.Scan(ctx, e, job)
	if err == nil && (out == nil || out.Result == nil) {
		err = fmt.Errorf("handler returned no result")
	}
	return out, err
}

// ScanAll scans sources concurrently, at most Options.Concurrency at a
// time, and returns one result per source in source order. A failing
// source yields an error result and never affects the others; only store
// errors abort the cycle.
func (e *Engine) ScanAll(ctx context.Context, sources []*store.Source, items []*store.Item) ([]*Result, error) {
	results := make([]*Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, src := range sources {
		g.Go(func() error {
			res, err := e.ScanOne(gctx, src, items, false)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// markdown renders page HTML for snapshot review. Conversion failures
// yield "".
func (e *Engine) markdown(html []byte, pageURL string) string {
	if len(html) == 0 {
		return ""
	}
	out, err := e.md.ConvertString(string(html), converter.WithDomain(pageURL))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
