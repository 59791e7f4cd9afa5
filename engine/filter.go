package engine

import (
	"sort"
	"strings"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
)

// applyFilters evaluates the step's filters with logical AND and
// returns the surviving view. Rows that cannot be evaluated (a missing
// cell, or a failed numeric coercion under gt/lt) are excluded rather
// than treated as matches. A filter column that does not resolve is a
// data error for the whole step.
func applyFilters(v view, filters []recipe.Filter) (view, error) {
	if len(filters) == 0 {
		return v, nil
	}

	type compiled struct {
		col    int
		filter *recipe.Filter
	}
	comps := make([]compiled, len(filters))
	for i := range filters {
		idx, ok := v.tbl.ColumnIndex(filters[i].Column)
		if !ok {
			return view{}, errors.Dataf("filter column %q not found", filters[i].Column)
		}
		comps[i] = compiled{col: idx, filter: &filters[i]}
	}

	out := view{tbl: &table.Table{Columns: v.tbl.Columns}, rowIDs: nil}
	for i, row := range v.tbl.Rows {
		keep := true
		for _, c := range comps {
			if !matchCell(row[c.col], c.filter) {
				keep = false
				break
			}
		}
		if keep {
			out.tbl.Rows = append(out.tbl.Rows, row)
			out.rowIDs = append(out.rowIDs, v.rowIDs[i])
		}
	}
	return out, nil
}

// matchCell evaluates one predicate against one cell. Missing cells
// never match: a row without a value cannot be evaluated against the
// predicate, so it is excluded under every operator.
func matchCell(cell string, f *recipe.Filter) bool {
	if table.IsMissing(cell) {
		return false
	}

	switch f.Operator {
	case "eq", "neq", "contains":
		want, _ := f.ScalarString()
		got := fold(cell)
		want = fold(want)
		switch f.Operator {
		case "eq":
			return got == want
		case "neq":
			return got != want
		default:
			return strings.Contains(got, want)
		}
	case "gt", "lt":
		cellNum, ok := table.ParseNumber(cell)
		if !ok {
			return false
		}
		want, ok := f.Number()
		if !ok {
			return false
		}
		if f.Operator == "gt" {
			return cellNum > want
		}
		return cellNum < want
	case "in", "not_in":
		list, _ := f.ListStrings()
		got := fold(cell)
		found := false
		for _, item := range list {
			if fold(item) == got {
				found = true
				break
			}
		}
		if f.Operator == "in" {
			return found
		}
		return !found
	default:
		return false
	}
}

// fold is the comparison form for case-insensitive operators: trimmed
// and lowercased, applied to the string form of every cell, numeric
// or not.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// partitionGroup is one group_by partition: the key tuple plus the rows
// that carry it.
type partitionGroup struct {
	key []string
	v   view
}

// partition splits a view by the group_by columns, one partition per
// distinct key tuple, ordered by ascending key so grouped output is
// deterministic. Missing cells form their own (empty-string) key values.
// Without group_by the whole view is a single unnamed partition.
func partition(v view, groupBy []string) ([]partitionGroup, error) {
	if len(groupBy) == 0 {
		return []partitionGroup{{v: v}}, nil
	}

	cols := make([]int, len(groupBy))
	for i, name := range groupBy {
		idx, ok := v.tbl.ColumnIndex(name)
		if !ok {
			return nil, errors.Dataf("group_by column %q not found", name)
		}
		cols[i] = idx
	}

	const sep = "\x1f"
	byKey := make(map[string]*partitionGroup)
	var order []string
	for i, row := range v.tbl.Rows {
		parts := make([]string, len(cols))
		for j, c := range cols {
			parts[j] = row[c]
		}
		k := strings.Join(parts, sep)
		g, ok := byKey[k]
		if !ok {
			g = &partitionGroup{
				key: parts,
				v:   view{tbl: &table.Table{Columns: v.tbl.Columns}},
			}
			byKey[k] = g
			order = append(order, k)
		}
		g.v.tbl.Rows = append(g.v.tbl.Rows, row)
		g.v.rowIDs = append(g.v.rowIDs, v.rowIDs[i])
	}

	sort.Strings(order)
	out := make([]partitionGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out, nil
}
