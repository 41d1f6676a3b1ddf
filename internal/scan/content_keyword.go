package scan

import (
	"context"
	"errors"

	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/fingerprint"
	"github.com/hazyhaar/recallwatch/internal/match"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// significantKeywords is the distinct-keyword count at which a page
// counts as a recall notice.
const significantKeywords = 2

// contentKeywordHandler scores a page by how many distinct keywords it
// contains. The state is ACTIVE or INACTIVE (NOT_FOUND for a missing
// page); turning ACTIVE from a known inactive state is the change.
type contentKeywordHandler struct{}

func (contentKeywordHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	resp, err := e.fetcher.Get(ctx, src.URL)
	if errors.Is(err, fetch.ErrStatus) {
		res := newResult(src)
		res.KeywordMatches = intPtr(0)
		return &Outcome{Result: res, Fingerprint: fingerprint.NotFound}, nil
	}
	if err != nil {
		return nil, err
	}

	keywords := src.Keywords
	if !extract.HasKeywords(keywords) {
		keywords = e.opts.DefaultKeywords
	}
	text := extract.NormalizeHTML(string(resp.Body))
	hits := extract.CountKeywords(text, keywords)
	significant := hits >= significantKeywords
	changed := significant &&
		(src.LastHash == fingerprint.Inactive || src.LastHash == fingerprint.NotFound)
	e.logger.Debug("scan: keyword score", "source_key", src.Key, "hits", hits)

	res := newResult(src)
	res.Changed = changed
	res.KeywordMatches = intPtr(hits)

	fp := fingerprint.Inactive
	var found []string
	if significant {
		fp = fingerprint.Active
		found = dates.Extract(text)
		res.setDates(found)
		res.setMatches(match.ExactDate(found, job.Items, changed))
	}

	out := &Outcome{Result: res, Fingerprint: fp}
	if changed {
		out.Snapshot = &store.Snapshot{
			Hash:           fp,
			RawText:        text,
			Markdown:       e.markdown(resp.Body, pageURL(src, resp.FinalURL)),
			ExtractedDates: found,
		}
	}
	return out, nil
}
