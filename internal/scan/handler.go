package scan

import (
	"context"

	"github.com/hazyhaar/recallwatch/internal/store"
)

// Job is one source scan request.
type Job struct {
	Source   *store.Source
	Items    []*store.Item
	ForceOCR bool
}

// firstScan reports whether the source has never been scanned successfully.
func (j *Job) firstScan() bool { return j.Source.LastHash == "" }

// Handler implements one scan strategy: fetch, detect change, extract and
// match. Returned errors become error results; handlers never persist.
type Handler interface {
	Scan(ctx context.Context, e *Engine, job *Job) (*Outcome, error)
}

func defaultHandlers() map[store.Strategy]Handler {
	return map[store.Strategy]Handler{
		store.StrategyHTMLText:       htmlTextHandler{},
		store.StrategySectionHash:    sectionHashHandler{},
		store.StrategyListItems:      listItemsHandler{},
		store.StrategyURLCheck:       urlCheckHandler{},
		store.StrategyContentKeyword: contentKeywordHandler{},
		store.StrategyImageOCR:       imageOCRHandler{},
	}
}
