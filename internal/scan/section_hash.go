package scan

import (
	"context"

	"github.com/hazyhaar/recallwatch/internal/extract"
)

// sectionHashHandler fingerprints only the section under the configured
// heading, so edits elsewhere on the page go unnoticed. Zero keyword hits
// in the section force an unchanged result.
type sectionHashHandler struct{}

func (sectionHashHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	resp, err := e.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	if src.SectionHeading == "" {
		e.logger.Warn("scan: SECTION_HASH source without heading, hashing whole page", "source_key", src.Key)
	}
	section := extract.SelectSection(string(resp.Body), src.SectionHeading)
	e.logger.Debug("scan: section selected", "source_key", src.Key, "runes", len([]rune(section)))

	if extract.HasKeywords(src.Keywords) && extract.CountKeywords(section, src.Keywords) == 0 {
		e.logger.Debug("scan: no keyword matches in section, skipping", "source_key", src.Key)
		return skipped(job), nil
	}
	return e.compareText(job, section, resp.Body, pageURL(src, resp.FinalURL)), nil
}
