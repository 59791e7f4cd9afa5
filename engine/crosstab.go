package engine

import (
	"sort"
	"strconv"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
)

// runCrosstab builds a contingency table of co-occurrence counts between
// the distinct values of two columns, with All margins. show_percentages
// selects raw counts or row/column/table-normalized percentages.
func runCrosstab(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	idxCol, ok := v.tbl.ColumnIndex(step.IndexColumn)
	if !ok {
		return nil, nil, errors.Dataf("index column %q not found", step.IndexColumn)
	}
	cmpCol, ok := v.tbl.ColumnIndex(step.ColumnToCompare)
	if !ok {
		return nil, nil, errors.Dataf("compare column %q not found", step.ColumnToCompare)
	}

	// Pairs where both columns are present, then per-column
	// transformations (strip_whitespace, split_and_explode; exploded
	// tokens are counted independently).
	type pair struct{ a, b string }
	var pairs []pair
	for _, row := range v.tbl.Rows {
		if table.IsMissing(row[idxCol]) || table.IsMissing(row[cmpCol]) {
			continue
		}
		pairs = append(pairs, pair{a: row[idxCol], b: row[cmpCol]})
	}

	expand := func(value string, transforms []recipe.Transformation) []string {
		if len(transforms) == 0 {
			return []string{value}
		}
		return transformSeries([]string{value}, transforms)
	}
	idxTransforms := columnTransforms(step.ColumnTransformations, step.IndexColumn)
	cmpTransforms := columnTransforms(step.ColumnTransformations, step.ColumnToCompare)

	counts := make(map[string]map[string]int)
	rowTotals := make(map[string]int)
	colTotals := make(map[string]int)
	grand := 0
	for _, p := range pairs {
		for _, a := range expand(p.a, idxTransforms) {
			if table.IsMissing(a) {
				continue
			}
			for _, b := range expand(p.b, cmpTransforms) {
				if table.IsMissing(b) {
					continue
				}
				if counts[a] == nil {
					counts[a] = make(map[string]int)
				}
				counts[a][b]++
				rowTotals[a]++
				colTotals[b]++
				grand++
			}
		}
	}

	aValues := sortedKeys(rowTotals)
	bValues := sortedKeys(colTotals)

	header := append([]string{step.IndexColumn}, bValues...)
	header = append(header, "All")

	percent := step.ShowPercentages != "none"
	cell := func(count, rowTotal, colTotal int) string {
		switch step.ShowPercentages {
		case "index":
			return pctCell(count, rowTotal)
		case "columns":
			return pctCell(count, colTotal)
		case "all":
			return pctCell(count, grand)
		default:
			return strconv.Itoa(count)
		}
	}

	rows := make([][]string, 0, len(aValues)+1)
	for _, a := range aValues {
		row := make([]string, 0, len(bValues)+2)
		row = append(row, a)
		for _, b := range bValues {
			row = append(row, cell(counts[a][b], rowTotals[a], colTotals[b]))
		}
		row = append(row, cell(rowTotals[a], rowTotals[a], grand))
		rows = append(rows, row)
	}
	// Margin row: column totals against the grand total.
	allRow := make([]string, 0, len(bValues)+2)
	allRow = append(allRow, "All")
	for _, b := range bValues {
		allRow = append(allRow, cell(colTotals[b], grand, colTotals[b]))
	}
	if percent {
		allRow = append(allRow, pctCell(grand, grand))
	} else {
		allRow = append(allRow, strconv.Itoa(grand))
	}
	rows = append(rows, allRow)

	section := &SectionResult{OutputName: step.OutputName, Header: header, Rows: rows}
	artifact := &artifactRows{
		kind:   artifactCrosstab,
		title:  "=== Crosstab: " + step.IndexColumn + " vs " + step.ColumnToCompare + " ===",
		header: header,
		rows:   rows,
	}
	return section, artifact, nil
}

// pctCell renders a count as a share of the denominator, ×100 rounded to
// two decimals; a zero denominator yields 0.00 rather than an error.
func pctCell(count, denom int) string {
	if denom == 0 {
		return table.FormatRounded(0)
	}
	return table.FormatRounded(float64(count) / float64(denom) * 100)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
