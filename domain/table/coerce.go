package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// IsMissing reports whether a cell holds no value.
func IsMissing(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

// ParseNumber attempts a tolerant numeric coercion of a cell. It accepts
// thousands separators, common currency symbols and parenthesized
// negatives ("(123)" -> -123). Percent-suffixed values are NOT handled
// here; callers that honor unit suffixes strip them first.
func ParseNumber(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥"} {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// FormatNumber renders a float in the canonical cell form used after
// to_numeric rewrites, with no trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRounded renders a float rounded to two decimals, the presentation
// used for percentages and summary values.
func FormatRounded(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"01-02-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseTime attempts to parse a cell as a timestamp using the layouts
// datasets in the wild actually carry.
func ParseTime(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NumericRatio returns the share of non-missing cells that coerce to a
// number. Column type inference treats a column as numeric when the
// ratio reaches 0.8, matching the ingestion coercion threshold.
func NumericRatio(cells []string) float64 {
	valid, numeric := 0, 0
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		valid++
		if _, ok := ParseNumber(c); ok {
			numeric++
		}
	}
	if valid == 0 {
		return 0
	}
	return float64(numeric) / float64(valid)
}

// NumericThreshold is the NumericRatio above which a column is treated
// as numeric rather than categorical.
const NumericThreshold = 0.8

// IsNumericColumn reports whether a column should be treated as numeric.
func IsNumericColumn(cells []string) bool {
	return NumericRatio(cells) >= NumericThreshold
}
