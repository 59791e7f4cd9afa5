package engine

import (
	"sort"
	"strconv"
	"strings"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

// runCustom executes the custom-operation workbench: one computation per
// (group, target column) pair, on the filtered, transformed and
// post-filtered series.
func runCustom(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	cols := make([]int, len(step.TargetColumns))
	for i, name := range step.TargetColumns {
		idx, ok := v.tbl.ColumnIndex(name)
		if !ok {
			return nil, nil, errors.Dataf("target column %q not found", name)
		}
		cols[i] = idx
	}

	groups, err := partition(v, step.GroupBy)
	if err != nil {
		return nil, nil, err
	}

	multiColumn := len(step.TargetColumns) > 1
	header := append([]string{}, step.GroupBy...)
	if multiColumn {
		header = append(header, "Column")
	}
	opHeader, err := customOpHeader(step.Operation)
	if err != nil {
		return nil, nil, err
	}
	header = append(header, opHeader...)

	var rows [][]string
	produced := false
	for _, g := range groups {
		if g.v.numRows() == 0 {
			continue
		}
		for ci, colIdx := range cols {
			series := transformSeries(g.v.column(colIdx), step.Transformations)
			series = applyPostFilters(series, step.PostTransformationFilters)

			opRows, ok := runCustomOp(step.Operation, series)
			if !ok {
				continue
			}
			produced = true
			prefix := append([]string{}, g.key...)
			if multiColumn {
				prefix = append(prefix, step.TargetColumns[ci])
			}
			for _, r := range opRows {
				rows = append(rows, append(append([]string{}, prefix...), r...))
			}
		}
	}

	if !produced && isAggregateOp(step.Operation) {
		return nil, nil, errors.Compute("no numeric values to aggregate")
	}

	return &SectionResult{OutputName: step.OutputName, Header: header, Rows: rows}, nil, nil
}

func customOpHeader(op string) ([]string, error) {
	switch op {
	case "distribution", "value_count":
		return []string{"Value", "%", "Count"}, nil
	case "duplicate_count":
		return []string{"Value", "Count"}, nil
	case "average":
		return []string{"Average"}, nil
	case "sum":
		return []string{"Sum"}, nil
	case "median":
		return []string{"Median"}, nil
	case "list_unique_values":
		return []string{"Value"}, nil
	default:
		return nil, errors.Computef("unknown custom operation %q", op)
	}
}

func isAggregateOp(op string) bool {
	return op == "average" || op == "sum" || op == "median"
}

// runCustomOp computes one operation over a transformed series. The
// boolean is false when the series held nothing the operation could
// consume (all-missing, or nothing numeric for aggregates).
func runCustomOp(op string, series []string) ([][]string, bool) {
	switch op {
	case "distribution", "value_count":
		return opDistribution(series)
	case "duplicate_count":
		return opDuplicateCount(series)
	case "average", "sum", "median":
		return opAggregate(op, series)
	case "list_unique_values":
		return opListUnique(series)
	}
	return nil, false
}

// opDistribution groups by value and reports each value's share of the
// counted total: percentages are count/total*100 rounded to two
// decimals, zero when the total is zero, and sum back to ~100.
func opDistribution(series []string) ([][]string, bool) {
	counts := make(map[string]int)
	total := 0
	for _, v := range series {
		if table.IsMissing(v) {
			continue
		}
		counts[v]++
		total++
	}
	if total == 0 {
		return nil, true
	}

	values := sortedByCountDesc(counts)
	rows := make([][]string, 0, len(values))
	for _, val := range values {
		pct := float64(counts[val]) / float64(total) * 100
		rows = append(rows, []string{val, table.FormatRounded(pct), strconv.Itoa(counts[val])})
	}
	return rows, true
}

// opDuplicateCount groups on the trimmed, case-insensitive value and
// keeps only groups seen more than once.
func opDuplicateCount(series []string) ([][]string, bool) {
	counts := make(map[string]int)
	for _, v := range series {
		if table.IsMissing(v) {
			continue
		}
		counts[fold(v)]++
	}
	dupes := make(map[string]int)
	for val, n := range counts {
		if n > 1 {
			dupes[val] = n
		}
	}
	values := sortedByCountDesc(dupes)
	rows := make([][]string, 0, len(values))
	for _, val := range values {
		rows = append(rows, []string{val, strconv.Itoa(dupes[val])})
	}
	return rows, true
}

// opAggregate computes average, sum or median over the numeric-coercible
// values. When every non-missing value carries a uniform "%" suffix the
// suffix is preserved on the output scalar; otherwise values are treated
// purely numerically and coercion failures are excluded.
func opAggregate(op string, series []string) ([][]string, bool) {
	unit := uniformPercentSuffix(series)

	var nums []float64
	for _, v := range series {
		if table.IsMissing(v) {
			continue
		}
		if unit != "" {
			v = strings.TrimSuffix(strings.TrimSpace(v), unit)
		}
		if n, ok := table.ParseNumber(v); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return nil, false
	}

	var result float64
	switch op {
	case "average":
		result = stats.Mean(nums)
	case "sum":
		result = stats.Sum(nums)
	case "median":
		result = stats.Median(nums)
	}
	return [][]string{{table.FormatRounded(result) + unit}}, true
}

// opListUnique enumerates distinct post-transformation values, sorted
// numerically when every value coerces, otherwise lexically.
func opListUnique(series []string) ([][]string, bool) {
	seen := make(map[string]bool)
	var values []string
	for _, v := range series {
		if table.IsMissing(v) || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	allNumeric := len(values) > 0
	parsed := make(map[string]float64, len(values))
	for _, v := range values {
		n, ok := table.ParseNumber(v)
		if !ok {
			allNumeric = false
			break
		}
		parsed[v] = n
	}
	if allNumeric {
		sort.Slice(values, func(i, j int) bool { return parsed[values[i]] < parsed[values[j]] })
	} else {
		sort.Strings(values)
	}

	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows, true
}

// sortedByCountDesc orders map keys by count descending, value
// ascending on ties.
func sortedByCountDesc(counts map[string]int) []string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	return values
}

// uniformPercentSuffix returns "%" when every non-missing value ends
// with it, otherwise "".
func uniformPercentSuffix(series []string) string {
	seen := false
	for _, v := range series {
		if table.IsMissing(v) {
			continue
		}
		seen = true
		if !strings.HasSuffix(strings.TrimSpace(v), "%") {
			return ""
		}
	}
	if !seen {
		return ""
	}
	return "%"
}
