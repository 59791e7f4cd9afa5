package engine

import (
	"math"
	"strconv"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

var outlierHeader = []string{"Column", "Row", "Value", "Method", "Bound / Z"}

// runOutlier flags observations outside the IQR fences or beyond a
// z-score cutoff, per target column. Row numbers refer back to the
// source dataset (1-based, pre-filter), so flagged values can be found
// in the upload. Columns with no numeric values, or no outliers, emit a
// marker row instead of staying silent.
func runOutlier(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	threshold := *step.Threshold

	var rows [][]string
	for _, name := range step.TargetColumns {
		colIdx, ok := v.tbl.ColumnIndex(name)
		if !ok {
			return nil, nil, errors.Dataf("target column %q not found", name)
		}

		type obs struct {
			rowID int
			raw   string
			val   float64
		}
		var observations []obs
		var nums []float64
		for i, row := range v.tbl.Rows {
			n, ok := table.ParseNumber(row[colIdx])
			if !ok {
				continue
			}
			observations = append(observations, obs{rowID: v.rowIDs[i], raw: row[colIdx], val: n})
			nums = append(nums, n)
		}
		if len(nums) == 0 {
			rows = append(rows, []string{name, "", "No numeric data for analysis", step.Method, ""})
			continue
		}

		flagged := 0
		switch step.Method {
		case "iqr":
			lower, upper := stats.IQRBounds(nums, threshold)
			for _, o := range observations {
				if o.val < lower {
					rows = append(rows, outlierRow(name, o.rowID, o.raw, step.Method, lower))
					flagged++
				} else if o.val > upper {
					rows = append(rows, outlierRow(name, o.rowID, o.raw, step.Method, upper))
					flagged++
				}
			}
		case "z-score":
			mean := stats.Mean(nums)
			sd := stats.SampleStdDev(nums)
			if sd == 0 || math.IsNaN(sd) {
				rows = append(rows, []string{name, "", "No outliers detected", step.Method, ""})
				continue
			}
			for _, o := range observations {
				z := (o.val - mean) / sd
				if math.Abs(z) > threshold {
					rows = append(rows, outlierRow(name, o.rowID, o.raw, step.Method, z))
					flagged++
				}
			}
		}
		if flagged == 0 {
			rows = append(rows, []string{name, "", "No outliers detected", step.Method, ""})
		}
	}

	return &SectionResult{OutputName: step.OutputName, Header: outlierHeader, Rows: rows}, nil, nil
}

// outlierRow renders one flagged observation. The last column carries
// the violated fence for iqr and the observation's z for z-score.
func outlierRow(column string, rowID int, raw, method string, bound float64) []string {
	return []string{
		column,
		strconv.Itoa(rowID),
		raw,
		method,
		table.FormatRounded(bound),
	}
}
