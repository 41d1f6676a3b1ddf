package scan

import (
	"context"
	"slices"
	"strings"

	"github.com/hazyhaar/recallwatch/internal/dates"
	"github.com/hazyhaar/recallwatch/internal/extract"
	"github.com/hazyhaar/recallwatch/internal/fingerprint"
	"github.com/hazyhaar/recallwatch/internal/match"
	"github.com/hazyhaar/recallwatch/internal/ocr"
	"github.com/hazyhaar/recallwatch/internal/store"
)

// imageOCRHandler watches a page whose notices are published as images.
// The fingerprint covers the set of image URLs. Transcription is paid
// for only when the set changed, on the first scan, or when forced.
type imageOCRHandler struct{}

func (imageOCRHandler) Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error) {
	src := job.Source
	resp, err := e.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	images := extract.Images(string(resp.Body), pageURL(src, resp.FinalURL), src.ImageSelector)
	fp := fingerprint.Of(strings.Join(images, "\n"))
	first := job.firstScan()
	var changed bool
	if first {
		changed = len(images) > 0
	} else {
		changed = src.LastHash != fp
	}

	res := newResult(src)
	res.Changed = changed
	res.ImageURLs = images
	out := &Outcome{Result: res, Fingerprint: fp}

	if !(job.ForceOCR || changed || first) {
		e.logger.Debug("scan: images unchanged, OCR skipped", "source_key", src.Key, "images", len(images))
		return out, nil
	}

	var transcript string
	switch {
	case len(images) == 0:
	case e.opts.OCR == nil:
		e.logger.Warn("scan: no OCR extractor configured", "source_key", src.Key, "images", len(images))
	default:
		transcript = ocr.Join(ocr.ExtractAll(ctx, e.opts.OCR, images, e.opts.OCRConcurrency))
		res.OCRExecuted = true
		res.OCRText = transcript
	}

	found := dates.Extract(transcript)
	res.setDates(found)
	if changed && len(found) == 0 {
		// Images changed but nothing was read from them: OCR failed, not a
		// clean result.
		res.setMatches(nil, slices.Clone(job.Items))
	} else {
		matched, _ := match.ProductGrouped(ocr.ParseProducts(transcript, e.opts.Aliases), job.Items)
		res.setMatches(matched, nil)
	}

	if changed || (job.ForceOCR && res.OCRExecuted) {
		raw := transcript
		if raw == "" {
			raw = strings.Join(images, "\n")
		}
		out.Snapshot = &store.Snapshot{
			Hash:           fp,
			RawText:        raw,
			ExtractedDates: found,
		}
	}
	return out, nil
}
