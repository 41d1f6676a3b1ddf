package scan

import (
	"context"
	"slices"
	"strings"

	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/fingerprint"
	"github.com/hazyhaar/recallwatch/internal/match"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// minListBody is the smallest body a list page can plausibly have.
const minListBody = 100

// listItemsHandler fingerprints the set of keyword-filtered links on a
// listing page, so a new entry changes the fingerprint while reordering
// does not.
type listItemsHandler struct{}

func (listItemsHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	resp, err := e.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) < minListBody {
		return nil, fetch.ErrEmptyResponse
	}

	links := extract.Links(string(resp.Body), pageURL(src, resp.FinalURL))
	var filtered []extract.Link
	for _, l := range links {
		if extract.MatchesAny(l.Title+" "+l.URL, src.Keywords) {
			filtered = append(filtered, l)
		}
	}
	e.logger.Debug("scan: links filtered", "source_key", src.Key, "links", len(links), "kept", len(filtered))

	if extract.HasKeywords(src.Keywords) && len(filtered) == 0 {
		return skipped(job), nil
	}

	pairs := make([]string, len(filtered))
	for i, l := range filtered {
		pairs[i] = l.URL + "|" + l.Title
	}
	slices.Sort(pairs)
	itemsText := strings.Join(pairs, "\n")
	fp := fingerprint.Of(itemsText)
	changed := !job.firstScan() && src.LastHash != fp

	var found []string
	for _, l := range filtered {
		for _, d := range dates.Extract(l.Title + " " + l.DateText) {
			if !slices.Contains(found, d) {
				found = append(found, d)
			}
		}
	}

	res := newResult(src)
	res.Changed = changed
	res.setDates(found)
	res.setMatches(match.ExactDate(found, job.Items, changed))
	res.KeywordMatches = intPtr(len(filtered))

	out := &Outcome{Result: res, Fingerprint: fp}
	if changed {
		res.NewItems = filtered[:min(len(filtered), maxNewItems)]
		out.Snapshot = &store.Snapshot{
			Hash:           fp,
			RawText:        itemsText,
			ExtractedDates: found,
		}
	}
	return out, nil
}
