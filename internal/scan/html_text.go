package scan

import (
	"context"

	"github.com/hazyhaar/recallwatch/internal/extract"
)

// htmlTextHandler fingerprints the visible text of a page, or of one
// section of it when the source names a heading. A source with keywords
// is skipped when none of them occurs in that text.
type htmlTextHandler struct{}

func (htmlTextHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	resp, err := e.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	var text string
	if src.SectionHeading != "" {
		text = extract.SelectSection(string(resp.Body), src.SectionHeading)
	} else {
		text = extract.NormalizeHTML(string(resp.Body))
	}

	if extract.HasKeywords(src.Keywords) && extract.CountKeywords(text, src.Keywords) == 0 {
		e.logger.Debug("scan: no keyword matches, skipping hash comparison", "source_key", src.Key)
		return skipped(job), nil
	}
	return e.compareText(job, text, resp.Body, pageURL(src, resp.FinalURL)), nil
}
