package scan

import (
	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/fingerprint"
	"github.com/hazyhaar/recallwatch/internal/match"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// skipped is the outcome of a keyword-gated scan that found no keyword:
// unchanged, nothing extracted, prior fingerprint kept.
func skipped(job *Job) *Outcome {
	res := newResult(job.Source)
	res.KeywordMatches = intPtr(0)
	return &Outcome{Result: res, Fingerprint: job.Source.LastHash}
}

// compareText fingerprints text, detects change against the prior
// fingerprint, and matches the dates found in text. page is the fetched
// HTML, rendered to markdown when a snapshot is taken.
func (e *Engine) compareText(job *Job, text string, page []byte, pageURL string) *Outcome {
	src := job.Source
	fp := fingerprint.Of(text)
	changed := !job.firstScan() && src.LastHash != fp
	found := dates.Extract(text)

	res := newResult(src)
	res.Changed = changed
	res.setDates(found)
	res.setMatches(match.ExactDate(found, job.Items, changed))
	if extract.HasKeywords(src.Keywords) {
		res.KeywordMatches = intPtr(extract.CountKeywords(text, src.Keywords))
	}

	out := &Outcome{Result: res, Fingerprint: fp}
	if changed {
		out.Snapshot = &store.Snapshot{
			Hash:           fp,
			RawText:        text,
			Markdown:       e.markdown(page, pageURL),
			ExtractedDates: found,
		}
	}
	return out
}

func pageURL(src *store.Source, finalURL string) string {
	if finalURL != "" {
		return finalURL
	}
	return src.URL
}
