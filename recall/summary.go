package recall

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// CompleteFunc sends a prompt to a language model and returns its answer.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// CallBudget limits model calls per day. The zero value allows nothing;
// use NewCallBudget.
type CallBudget struct {
	mu    sync.Mutex
	limit int
	day   string
	used  int
}

// NewCallBudget allows limit calls per day.
func NewCallBudget(limit int) *CallBudget {
	return &CallBudget{limit: limit}
}

// Reserve takes one call from day's budget, reporting false when it is
// exhausted. A new day resets the count.
func (b *CallBudget) Reserve(day string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day != day {
		b.day, b.used = day, 0
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}

// Refund returns a reserved call that did not produce an answer.
func (b *CallBudget) Refund(day string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day == day && b.used > 0 {
		b.used--
	}
}

// Used returns the calls spent on day.
func (b *CallBudget) Used(day string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.day != day {
		return 0
	}
	return b.used
}

// Summarizer writes the three-line report summary.
type Summarizer struct {
	complete       CompleteFunc // nil: templates only
	budget         *CallBudget
	maxPromptChars int
	logger         *slog.Logger
}

// NewSummarizer creates a Summarizer. complete may be nil.
func NewSummarizer(complete CompleteFunc, budget *CallBudget, maxPromptChars int, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{complete: complete, budget: budget, maxPromptChars: maxPromptChars, logger: logger}
}

const noChangeSummary = "No changes: every source matches its previous scan.\n" +
	"Scheduled monitoring is running normally.\n" +
	"The next scan runs at the next scheduled cycle."

// Summarize returns a summary of results for the report of day. The model
// is asked only when a source changed and the day's budget allows it;
// otherwise, or on failure, a fixed template is returned.
func (s *Summarizer) Summarize(ctx context.Context, day string, results []*Result, matched, uncertain int) string {
	var changed []*Result
	for _, r := range results {
		if r.Changed {
			changed = append(changed, r)
		}
	}
	if len(changed) == 0 {
		return noChangeSummary
	}
	fallback := fallbackSummary(changed, matched, uncertain)
	if s.complete == nil {
		return fallback
	}
	if !s.budget.Reserve(day) {
		s.logger.Info("summary: daily call limit reached, using template", "day", day)
		return fallback
	}

	out, err := s.complete(ctx, truncatePrompt(summaryPrompt(changed, matched, uncertain), s.maxPromptChars))
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		s.budget.Refund(day)
		s.logger.Warn("summary: model call failed, using template", "error", err)
		return fallback
	}
	return out
}

func summaryPrompt(changed []*Result, matched, uncertain int) string {
	var sb strings.Builder
	sb.WriteString("You monitor infant formula recalls. Summarize in at most 3 lines.\n\nScan results:\n")
	for _, r := range changed {
		found := "date extraction failed"
		if len(r.ExtractedDates) > 0 {
			found = strings.Join(r.ExtractedDates[:min(len(r.ExtractedDates), 5)], ", ")
		}
		fmt.Fprintf(&sb, "- [%s] %s: changed. MHD: %s\n", r.Country, r.SourceKey, found)
	}
	fmt.Fprintf(&sb, "\nMatches: %d matched, %d need review\n\nSummary (3 lines):", matched, uncertain)
	return sb.String()
}

// truncatePrompt cuts text to maxChars runes, at the last line break when
// one falls in the final fifth.
func truncatePrompt(text string, maxChars int) string {
	r := []rune(text)
	if maxChars <= 0 || len(r) <= maxChars {
		return text
	}
	cut := string(r[:maxChars])
	if i := strings.LastIndex(cut, "\n"); i >= 0 && len([]rune(cut[:i])) > maxChars*4/5 {
		return cut[:i] + "\n\n(truncated)"
	}
	return cut + "...(truncated)"
}

func fallbackSummary(changed []*Result, matched, uncertain int) string {
	var countries []string
	for _, r := range changed {
		if !slices.Contains(countries, r.Country) {
			countries = append(countries, r.Country)
		}
	}
	line1 := fmt.Sprintf("Changes detected on %d source(s) (%s).", len(changed), strings.Join(countries, ", "))
	var line2 string
	switch {
	case matched > 0:
		line2 = fmt.Sprintf("%d registered item(s) match. Check immediately.", matched)
	case uncertain > 0:
		line2 = fmt.Sprintf("%d item(s) need review. Manual check recommended.", uncertain)
	default:
		line2 = "No registered item matches."
	}
	return line1 + "\n" + line2 + "\nSee the source links below for details."
}
