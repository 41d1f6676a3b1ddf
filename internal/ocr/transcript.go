package ocr

import (
	"regexp"
	"slices"
	"strings"

	"github.com/hazyhaar/recallwatch/internal/dates"
)

// ProductGroup is one product block of a transcript.
type ProductGroup struct {
	Name     string   `json:"name"`
	ModelKey string   `json:"model_key,omitempty"` // "" when no alias matched
	MHDs     []string `json:"mhds"`                // DD-MM-YYYY
}

var (
	nameLine = regexp.MustCompile(`제품명:\s*(.+)`)
	mhdLine  = regexp.MustCompile(`MHD:\s*(.+)`)
)

// ParseProducts splits transcript into "---" delimited blocks and returns a
// group for every block carrying both a "제품명:" and an "MHD:" line. The
// MHD line is split on commas; each token is kept in DD-MM-YYYY form when
// it holds a valid date and dropped otherwise. Names are resolved to model
// keys through aliases, which may be nil.
func ParseProducts(transcript string, aliases *AliasTable) []ProductGroup {
	var groups []ProductGroup
	for _, block := range strings.Split(transcript, "---") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		nm := nameLine.FindStringSubmatch(block)
		mm := mhdLine.FindStringSubmatch(block)
		if nm == nil || mm == nil {
			continue
		}
		name := strings.TrimSpace(nm[1])

		var mhds []string
		for _, tok := range strings.Split(mm[1], ",") {
			found := dates.Extract(strings.TrimSpace(tok))
			if len(found) > 0 && !slices.Contains(mhds, found[0]) {
				mhds = append(mhds, found[0])
			}
		}

		g := ProductGroup{Name: name, MHDs: mhds}
		if aliases != nil {
			g.ModelKey = aliases.Resolve(name)
		}
		groups = append(groups, g)
	}
	return groups
}

// AliasTable maps localized product names to model keys.
type AliasTable struct {
	entries []aliasEntry
}

type aliasEntry struct {
	alias string // lowercased
	key   string
}

// NewAliasTable builds a table from model key to aliases. Blank aliases
// are ignored.
func NewAliasTable(byKey map[string][]string) *AliasTable {
	t := &AliasTable{}
	for key, aliases := range byKey {
		for _, a := range aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			t.entries = append(t.entries, aliasEntry{alias: a, key: key})
		}
	}
	// Longest alias first; ties by key then alias so resolution is stable.
	slices.SortFunc(t.entries, func(a, b aliasEntry) int {
		if la, lb := len([]rune(a.alias)), len([]rune(b.alias)); la != lb {
			return lb - la
		}
		if c := strings.Compare(a.key, b.key); c != 0 {
			return c
		}
		return strings.Compare(a.alias, b.alias)
	})
	return t
}

// Resolve returns the model key whose alias occurs in name
// (case-insensitive). When several aliases occur, the longest wins.
// It returns "" when nothing matches.
func (t *AliasTable) Resolve(name string) string {
	lower := strings.ToLower(name)
	for _, e := range t.entries {
		if strings.Contains(lower, e.alias) {
			return e.key
		}
	}
	return ""
}
