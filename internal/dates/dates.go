// Package dates extracts, validates and normalizes the day-month-year codes
// printed on recall notices and product packaging (MHD, best-before).
//
// Every date leaving this package is in canonical DD-MM-YYYY form.
package dates

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dayFirst  = regexp.MustCompile(`\b(\d{2})[-./](\d{2})[-./](\d{4})\b`)
	yearFirst = regexp.MustCompile(`\b(\d{4})[-./](\d{2})[-./](\d{2})\b`)

	canonical = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	dotted    = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
	slashed   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	iso       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	spaces    = regexp.MustCompile(`\s+`)
)

// February is fixed at 29 days: leap years are not computed.
var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Extract returns every valid date token found in text, normalized to
// DD-MM-YYYY. Day-first tokens are collected before year-first tokens and
// duplicates are dropped, keeping first-seen order. Callers that need a
// canonical order sort the result.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(d string) {
		if !IsValid(d) {
			return
		}
		if _, ok := seen[d]; ok {
			return
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}

	for _, m := range dayFirst.FindAllStringSubmatch(text, -1) {
		add(m[1] + "-" + m[2] + "-" + m[3])
	}
	for _, m := range yearFirst.FindAllStringSubmatch(text, -1) {
		add(m[3] + "-" + m[2] + "-" + m[1])
	}
	return out
}

// IsValid reports whether s is a DD-MM-YYYY date with month 1..12, day
// within the month table, and year 1900..2100.
func IsValid(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > daysInMonth[month-1] {
		return false
	}
	return year >= 1900 && year <= 2100
}

// ParseUserInput parses a single date typed by a user. Accepted forms are
// DD-MM-YYYY, DD.MM.YYYY, DD/MM/YYYY, YYYY-MM-DD and "DD MM YYYY". The
// result is canonical DD-MM-YYYY; ok is false for anything else, including
// unpadded tokens such as 15-6-2026.
func ParseUserInput(input string) (string, bool) {
	s := strings.TrimSpace(input)

	var normalized string
	switch {
	case canonical.MatchString(s):
		normalized = s
	case dotted.MatchString(s):
		normalized = strings.ReplaceAll(s, ".", "-")
	case slashed.MatchString(s):
		normalized = strings.ReplaceAll(s, "/", "-")
	case iso.MatchString(s):
		p := strings.Split(s, "-")
		normalized = p[2] + "-" + p[1] + "-" + p[0]
	default:
		joined := spaces.ReplaceAllString(s, "-")
		if !canonical.MatchString(joined) {
			return "", false
		}
		normalized = joined
	}

	if !IsValid(normalized) {
		return "", false
	}
	return normalized, true
}
