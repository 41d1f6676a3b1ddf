package scan

import (
	"context"
	"errors"
	"net/http"

	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/fetch"
	"github.com/hazyhaar/recallwatch/internal/fingerprint"
	"github.com/hazyhaar/recallwatch/internal/match"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// urlCheckHandler watches for a notice URL coming into existence. The
// state is EXISTS or NOT_FOUND; the transition to EXISTS from NOT_FOUND
// or from never-checked is the change.
type urlCheckHandler struct{}

func (urlCheckHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	status, err := e.fetcher.Head(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	var resp *fetch.Response
	present := status >= 200 && status < 300
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		// HEAD unsupported: let GET decide.
		resp, err = e.fetcher.Get(ctx, src.URL)
		switch {
		case errors.Is(err, fetch.ErrStatus):
			present = false
		case err != nil:
			return nil, err
		default:
			present = true
		}
	}

	fp := fingerprint.NotFound
	if present {
		fp = fingerprint.Exists
	}
	changed := present && (src.LastHash == "" || src.LastHash == fingerprint.NotFound)

	res := newResult(src)
	res.Changed = changed
	out := &Outcome{Result: res, Fingerprint: fp}
	if !present {
		return out, nil
	}

	if resp == nil {
		if resp, err = e.fetcher.Get(ctx, src.URL); err != nil {
			return nil, err
		}
	}
	text := extract.NormalizeHTML(string(resp.Body))
	found := dates.Extract(text)
	res.setDates(found)
	res.setMatches(match.ExactDate(found, job.Items, changed))

	if changed {
		out.Snapshot = &store.Snapshot{
			Hash:           fp,
			RawText:        "URL activated: " + src.URL + "\n" + text,
			Markdown:       e.markdown(resp.Body, pageURL(src, resp.FinalURL)),
			ExtractedDates: found,
		}
	}
	return out, nil
}
