package table

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordRun    = regexp.MustCompile(`[^a-z0-9_]+`)
	underscoreRun = regexp.MustCompile(`_+`)
)

// Normalize canonicalizes a column name so dataset headers and recipe
// references always agree: trim, collapse internal whitespace, lowercase,
// replace non-word runs with "_", collapse repeated "_", strip edge "_".
// Pure and total; only the empty string is a degenerate result.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.ToLower(s)
	s = nonWordRun.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// MakeUnique disambiguates duplicate names by appending .1, .2, … in
// order of first occurrence; the first occurrence stays unsuffixed.
func MakeUnique(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		idx := seen[n]
		if idx == 0 {
			out[i] = n
		} else {
			out[i] = n + "." + strconv.Itoa(idx)
		}
		seen[n] = idx + 1
	}
	return out
}
