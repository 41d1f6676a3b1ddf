package recall

import (
	"slices"
	"time"
)

// RiskLevel classifies a report.
type RiskLevel string

const (
	RiskSafe   RiskLevel = "safe"   // nothing changed, nothing matched
	RiskReview RiskLevel = "review" // changes or uncertain items, no match
	RiskDanger RiskLevel = "danger" // at least one registered item matched
)

// Report summarizes one scan cycle.
type Report struct {
	Date           string          `json:"date"` // YYYY-MM-DD in the configured timezone
	GeneratedAt    int64           `json:"generated_at"`
	RiskLevel      RiskLevel       `json:"risk_level"`
	ChangedSources int             `json:"changed_sources"`
	ErrorSources   int             `json:"error_sources"`
	MatchedCount   int             `json:"matched_count"`
	UncertainCount int             `json:"uncertain_count"`
	UnmatchedCount int             `json:"unmatched_count"`
	Summary        string          `json:"summary"`
	SourceLinks    []string        `json:"source_links"`
	MatchedItems   []*Item         `json:"matched_items"`
	Countries      []CountryReport `json:"countries"`
	Results        []*Result       `json:"results"`
}

// CountryReport rolls up the results of one country.
type CountryReport struct {
	Country        string   `json:"country"`
	Changed        bool     `json:"changed"`
	MatchedCount   int      `json:"matched_count"`
	UncertainCount int      `json:"uncertain_count"`
	UnmatchedCount int      `json:"unmatched_count"`
	Tier1Links     []string `json:"tier1_links"`
}

// itemTally counts distinct items. An item matched anywhere is not also
// counted as uncertain.
type itemTally struct {
	matched   []*Item
	matchedID map[string]bool
	uncertain map[string]bool
}

func newItemTally() *itemTally {
	return &itemTally{matchedID: map[string]bool{}, uncertain: map[string]bool{}}
}

func (t *itemTally) add(r *Result) {
	for _, it := range r.MatchedItems {
		if !t.matchedID[it.ID] {
			t.matchedID[it.ID] = true
			t.matched = append(t.matched, it)
		}
	}
	for _, it := range r.UncertainItems {
		t.uncertain[it.ID] = true
	}
}

func (t *itemTally) counts(total int) (matched, uncertain, unmatched int) {
	matched = len(t.matchedID)
	for id := range t.uncertain {
		if !t.matchedID[id] {
			uncertain++
		}
	}
	return matched, uncertain, max(total-matched-uncertain, 0)
}

// BuildReport aggregates results of a cycle over sources and items. The
// summary is left empty.
func BuildReport(results []*Result, sources []*Source, items []*Item, now time.Time, loc *time.Location) *Report {
	rep := &Report{
		Date:         now.In(loc).Format("2006-01-02"),
		GeneratedAt:  now.UnixMilli(),
		Results:      results,
		SourceLinks:  []string{},
		MatchedItems: []*Item{},
		Countries:    []CountryReport{},
	}
	for _, s := range sources {
		rep.SourceLinks = append(rep.SourceLinks, s.URL)
	}

	all := newItemTally()
	var countries []string
	byCountry := map[string]*itemTally{}
	changedCountry := map[string]bool{}
	for _, r := range results {
		if r.Changed {
			rep.ChangedSources++
			changedCountry[r.Country] = true
		}
		if r.Error != "" {
			rep.ErrorSources++
		}
		all.add(r)
		if byCountry[r.Country] == nil {
			byCountry[r.Country] = newItemTally()
			countries = append(countries, r.Country)
		}
		byCountry[r.Country].add(r)
	}

	rep.MatchedCount, rep.UncertainCount, rep.UnmatchedCount = all.counts(len(items))
	if all.matched != nil {
		rep.MatchedItems = all.matched
	}
	switch {
	case rep.MatchedCount > 0:
		rep.RiskLevel = RiskDanger
	case rep.ChangedSources > 0 || rep.UncertainCount > 0:
		rep.RiskLevel = RiskReview
	default:
		rep.RiskLevel = RiskSafe
	}

	for _, c := range countries {
		cr := CountryReport{Country: c, Changed: changedCountry[c], Tier1Links: []string{}}
		cr.MatchedCount, cr.UncertainCount, cr.UnmatchedCount = byCountry[c].counts(len(items))
		for _, s := range sources {
			if s.Country == c && s.Tier == 1 && !slices.Contains(cr.Tier1Links, s.URL) {
				cr.Tier1Links = append(cr.Tier1Links, s.URL)
			}
		}
		rep.Countries = append(rep.Countries, cr)
	}
	return rep
}
