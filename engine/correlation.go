package engine

import (
	"math"
	"sort"
	"strconv"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

// Correlation measure labels, one per inferred type pairing.
const (
	measurePearson = "Pearson"
	measureCramer  = "Cramér's V"
	measureEta     = "Eta"
)

var correlationHeader = []string{"Source", "Target", "Measure", "Measure Type", "N"}

// runCorrelation expands sources × targets pairwise (self-pairs
// skipped), infers each column's type by numeric coercion success rate,
// and applies the matching measure: Pearson r for numeric pairs,
// bias-corrected Cramér's V for categorical pairs, and the correlation
// ratio eta for mixed pairs. Pairs below the threshold are dropped.
func runCorrelation(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	resolve := func(names []string, what string) ([]int, error) {
		out := make([]int, len(names))
		for i, n := range names {
			idx, ok := v.tbl.ColumnIndex(n)
			if !ok {
				return nil, errors.Dataf("%s column %q not found", what, n)
			}
			out[i] = idx
		}
		return out, nil
	}
	srcCols, err := resolve(step.Sources, "source")
	if err != nil {
		return nil, nil, err
	}
	tgtCols, err := resolve(step.Targets, "target")
	if err != nil {
		return nil, nil, err
	}

	threshold := *step.Threshold

	type record struct {
		source, target string
		measure        float64
		measureType    string
		n              int
	}
	var records []record

	for si, sCol := range srcCols {
		for ti, tCol := range tgtCols {
			if sCol == tCol {
				continue
			}

			// Align on rows where both cells are present.
			var xs, ys []string
			for _, row := range v.tbl.Rows {
				if table.IsMissing(row[sCol]) || table.IsMissing(row[tCol]) {
					continue
				}
				xs = append(xs, row[sCol])
				ys = append(ys, row[tCol])
			}
			if len(xs) == 0 {
				continue
			}

			xNumeric := table.IsNumericColumn(xs)
			yNumeric := table.IsNumericColumn(ys)

			var measure float64
			var measureType string
			var n int
			switch {
			case xNumeric && yNumeric:
				xv, yv := alignedNumbers(xs, ys)
				measure = stats.Pearson(xv, yv)
				measureType = measurePearson
				n = len(xv)
			case !xNumeric && !yNumeric:
				measure = stats.CramersV(xs, ys)
				measureType = measureCramer
				n = len(xs)
			case xNumeric:
				cats, nums := categoricalNumericPairs(ys, xs)
				measure = stats.CorrelationRatio(cats, nums)
				measureType = measureEta
				n = len(nums)
			default:
				cats, nums := categoricalNumericPairs(xs, ys)
				measure = stats.CorrelationRatio(cats, nums)
				measureType = measureEta
				n = len(nums)
			}

			if math.IsNaN(measure) || math.Abs(measure) < threshold {
				continue
			}
			records = append(records, record{
				source:      step.Sources[si],
				target:      step.Targets[ti],
				measure:     measure,
				measureType: measureType,
				n:           n,
			})
		}
	}

	sort.Slice(records, func(i, j int) bool {
		ai, aj := math.Abs(records[i].measure), math.Abs(records[j].measure)
		if ai != aj {
			return ai > aj
		}
		if records[i].source != records[j].source {
			return records[i].source < records[j].source
		}
		return records[i].target < records[j].target
	})

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.source,
			r.target,
			strconv.FormatFloat(r.measure, 'f', 4, 64),
			r.measureType,
			strconv.Itoa(r.n),
		}
	}

	section := &SectionResult{OutputName: step.OutputName, Header: correlationHeader, Rows: rows}
	artifact := &artifactRows{kind: artifactCorrelation, header: correlationHeader, rows: rows}
	return section, artifact, nil
}

// alignedNumbers keeps only the pairs where both sides coerce.
func alignedNumbers(xs, ys []string) ([]float64, []float64) {
	var xv, yv []float64
	for i := range xs {
		x, okX := table.ParseNumber(xs[i])
		y, okY := table.ParseNumber(ys[i])
		if okX && okY {
			xv = append(xv, x)
			yv = append(yv, y)
		}
	}
	return xv, yv
}

// categoricalNumericPairs keeps the pairs whose numeric side coerces.
func categoricalNumericPairs(cats, nums []string) ([]string, []float64) {
	var outCats []string
	var outNums []float64
	for i := range cats {
		n, ok := table.ParseNumber(nums[i])
		if !ok {
			continue
		}
		outCats = append(outCats, cats[i])
		outNums = append(outNums, n)
	}
	return outCats, outNums
}
