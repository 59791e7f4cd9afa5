package engine

import (
	"sort"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal/errors"
	"reportauto/internal/stats"
)

var keyDriverHeader = []string{"Feature", "Coefficient", "Standard Error", "P-value"}

// runKeyDriver fits an ordinary least squares regression of the target
// on the feature columns. Categorical features are dummy-encoded with
// the first level (sorted order) dropped as the reference. Terms whose
// p-value exceeds the threshold are excluded from the output; the
// intercept, when fitted, is always reported.
func runKeyDriver(v view, step *recipe.Step) (*SectionResult, *artifactRows, error) {
	tgtCol, ok := v.tbl.ColumnIndex(step.TargetVariable)
	if !ok {
		return nil, nil, errors.Dataf("target variable %q not found", step.TargetVariable)
	}

	categorical := make(map[string]bool, len(step.CategoricalFeatures))
	for _, f := range step.CategoricalFeatures {
		categorical[table.Normalize(f)] = true
	}

	type feature struct {
		name        string
		col         int
		categorical bool
	}
	features := make([]feature, len(step.FeatureColumns))
	for i, name := range step.FeatureColumns {
		idx, ok := v.tbl.ColumnIndex(name)
		if !ok {
			return nil, nil, errors.Dataf("feature column %q not found", name)
		}
		features[i] = feature{name: name, col: idx, categorical: categorical[table.Normalize(name)]}
	}

	// Pass one: keep rows where the target coerces, every numeric
	// feature coerces, and every categorical feature is present.
	var kept []int
	for i, row := range v.tbl.Rows {
		if _, ok := table.ParseNumber(row[tgtCol]); !ok {
			continue
		}
		usable := true
		for _, f := range features {
			if f.categorical {
				if table.IsMissing(row[f.col]) {
					usable = false
					break
				}
			} else if _, ok := table.ParseNumber(row[f.col]); !ok {
				usable = false
				break
			}
		}
		if usable {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, nil, errors.Compute("no usable rows for regression")
	}

	// Pass two: levels per categorical feature from the retained rows,
	// sorted so encoding is stable, first level dropped as reference.
	levels := make(map[string][]string)
	for _, f := range features {
		if !f.categorical {
			continue
		}
		seen := make(map[string]bool)
		for _, ri := range kept {
			seen[v.tbl.Rows[ri][f.col]] = true
		}
		var ls []string
		for l := range seen {
			ls = append(ls, l)
		}
		sort.Strings(ls)
		levels[f.name] = ls
	}

	includeIntercept := *step.IncludeIntercept

	// The intercept, when fitted, is always term 0. Tracking its index
	// keeps it exempt from the p-value filter even when a feature column
	// happens to be named "const".
	interceptIdx := -1
	var terms []string
	if includeIntercept {
		interceptIdx = 0
		terms = append(terms, "const")
	}
	for _, f := range features {
		if f.categorical {
			for _, l := range levels[f.name][1:] {
				terms = append(terms, f.name+"_"+l)
			}
		} else {
			terms = append(terms, f.name)
		}
	}
	if len(terms) == 0 {
		return nil, nil, errors.Compute("no regression terms after encoding")
	}

	y := make([]float64, len(kept))
	rows := make([][]float64, len(kept))
	for i, ri := range kept {
		row := v.tbl.Rows[ri]
		y[i], _ = table.ParseNumber(row[tgtCol])

		x := make([]float64, 0, len(terms))
		if includeIntercept {
			x = append(x, 1)
		}
		for _, f := range features {
			if f.categorical {
				for _, l := range levels[f.name][1:] {
					if row[f.col] == l {
						x = append(x, 1)
					} else {
						x = append(x, 0)
					}
				}
			} else {
				n, _ := table.ParseNumber(row[f.col])
				x = append(x, n)
			}
		}
		rows[i] = x
	}

	fit, err := stats.FitOLS(terms, rows, y)
	if err != nil {
		return nil, nil, errors.Computef("regression failed: %v", err)
	}

	pThreshold := *step.PValueThreshold
	var out [][]string
	for j, t := range fit.Terms {
		if j != interceptIdx && t.PValue > pThreshold {
			continue
		}
		out = append(out, []string{
			t.Name,
			table.FormatRounded(t.Coefficient),
			table.FormatRounded(t.StdError),
			table.FormatRounded(t.PValue),
		})
	}
	out = append(out, []string{"R-squared", table.FormatRounded(fit.RSquared), "", ""})

	return &SectionResult{OutputName: step.OutputName, Header: keyDriverHeader, Rows: out}, nil, nil
}
