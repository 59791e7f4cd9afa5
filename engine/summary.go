package engine

import (
	"strconv"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

// summaryMetrics in emission order. count renders as an integer, the
// rest rounded to two decimals.
var summaryMetrics = []string{"count", "mean", "std", "min", "p25", "p50", "p75", "max"}

// runSummary emits descriptive statistics per numeric column, per
// group. A single ungrouped column uses the compact two-column layout;
// anything wider prefixes group keys and the column name.
func runSummary(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	cols := make([]int, len(step.NumericColumns))
	for i, name := range step.NumericColumns {
		idx, ok := v.tbl.ColumnIndex(name)
		if !ok {
			return nil, nil, errors.Dataf("numeric column %q not found", name)
		}
		cols[i] = idx
	}

	groups, err := partition(v, step.GroupBy)
	if err != nil {
		return nil, nil, err
	}

	compact := len(step.GroupBy) == 0 && len(step.NumericColumns) == 1

	var header []string
	if compact {
		header = []string{"Metric", "Value"}
	} else {
		header = append(append([]string{}, step.GroupBy...), "Column", "Metric", "Value")
	}

	var rows [][]string
	for _, g := range groups {
		for ci, colIdx := range cols {
			series := transformSeries(g.v.column(colIdx), columnTransforms(step.ColumnTransformations, step.NumericColumns[ci]))

			var nums []float64
			for _, val := range series {
				if n, ok := table.ParseNumber(val); ok {
					nums = append(nums, n)
				}
			}

			prefix := func(metric, value string) []string {
				if compact {
					return []string{metric, value}
				}
				row := append([]string{}, g.key...)
				return append(row, step.NumericColumns[ci], metric, value)
			}

			if len(nums) == 0 {
				rows = append(rows, prefix("No numeric data for analysis", ""))
				continue
			}

			for _, metric := range summaryMetrics {
				rows = append(rows, prefix(metric, summaryValue(metric, nums)))
			}
		}
	}

	return &SectionResult{OutputName: step.OutputName, Header: header, Rows: rows}, nil, nil
}

func summaryValue(metric string, nums []float64) string {
	switch metric {
	case "count":
		return strconv.Itoa(len(nums))
	case "mean":
		return table.FormatRounded(stats.Mean(nums))
	case "std":
		return table.FormatRounded(stats.SampleStdDev(nums))
	case "min":
		return table.FormatRounded(stats.Min(nums))
	case "p25":
		return table.FormatRounded(stats.Quantile(nums, 0.25))
	case "p50":
		return table.FormatRounded(stats.Quantile(nums, 0.5))
	case "p75":
		return table.FormatRounded(stats.Quantile(nums, 0.75))
	case "max":
		return table.FormatRounded(stats.Max(nums))
	}
	return ""
}
