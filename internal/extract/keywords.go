package extract

import "strings"

// CountKeywords returns how many distinct keywords occur in text,
// case-insensitively. Blank keywords are ignored.
func CountKeywords(text string, keywords []string) int {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, len(keywords))
	n := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		if strings.Contains(lower, kw) {
			n++
		}
	}
	return n
}

// MatchesAny reports whether text contains any keyword. An empty keyword
// list matches everything.
func MatchesAny(text string, keywords []string) bool {
	if !HasKeywords(keywords) {
		return true
	}
	return CountKeywords(text, keywords) > 0
}

// HasKeywords reports whether keywords holds at least one non-blank entry.
func HasKeywords(keywords []string) bool {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) != "" {
			return true
		}
	}
	return false
}
