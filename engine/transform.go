package engine

import (
	"regexp"
	"strings"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// transformSeries applies a step's transformation chain to one column's
// values, in the order given. split_and_explode fans the series out to
// one output value per token, appending tokens as they are produced, so
// the expansion never exists as a separate intermediate table.
func transformSeries(values []string, transforms []recipe.Transformation) []string {
	out := values
	for i := range transforms {
		t := &transforms[i]
		switch t.Action {
		case "strip_whitespace":
			next := make([]string, len(out))
			for j, v := range out {
				next[j] = collapseWhitespace(v)
			}
			out = next
		case "split_and_explode":
			delim, _ := t.StringParam("delimiter")
			var next []string
			for _, v := range out {
				if table.IsMissing(v) {
					continue
				}
				for _, tok := range strings.Split(v, delim) {
					tok = strings.TrimSpace(tok)
					if tok != "" {
						next = append(next, tok)
					}
				}
			}
			out = next
		case "to_root_node":
			delim, _ := t.StringParam("delimiter")
			next := make([]string, len(out))
			for j, v := range out {
				if table.IsMissing(v) {
					continue
				}
				root, _, _ := strings.Cut(v, delim)
				next[j] = strings.TrimSpace(root)
			}
			out = next
		case "to_numeric":
			next := make([]string, len(out))
			for j, v := range out {
				if n, ok := table.ParseNumber(v); ok {
					next[j] = table.FormatNumber(n)
				}
				// coercion failures become missing, not zero
			}
			out = next
		case "fill_na":
			def, _ := t.ValueParam("value")
			next := make([]string, len(out))
			for j, v := range out {
				if table.IsMissing(v) {
					next[j] = def
				} else {
					next[j] = v
				}
			}
			out = next
		}
	}
	return out
}

// applyPostFilters restricts the computed series before emission, e.g.
// a not_in of excluded keys or an eq pinning one value. Same predicate
// semantics as row filters, applied to the transformed values.
func applyPostFilters(values []string, filters []recipe.Filter) []string {
	if len(filters) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		keep := true
		for i := range filters {
			if !matchCell(v, &filters[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}

// columnTransforms picks the transformation list bound to one column,
// for steps that carry per-column transformation sets.
func columnTransforms(cts []recipe.ColumnTransformation, column string) []recipe.Transformation {
	want := table.Normalize(column)
	for i := range cts {
		if table.Normalize(cts[i].ColumnName) == want {
			return cts[i].Transformations
		}
	}
	return nil
}

func collapseWhitespace(s string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
