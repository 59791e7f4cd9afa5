// Package recipe defines the declarative analysis request: an ordered
// list of steps over a closed set of seven analysis kinds, plus the
// filter and transformation shapes every step shares.
package recipe

import (
	"encoding/json"
	"strconv"

	"reportauto/internal/errors"
)

// StepKind tags the closed set of analysis variants.
type StepKind string

const (
	KindCustom      StepKind = "custom"
	KindCorrelation StepKind = "correlation"
	KindCrosstab    StepKind = "crosstab"
	KindKeyDriver   StepKind = "key_driver"
	KindOutlier     StepKind = "outlier_detection"
	KindSummary     StepKind = "summary_stats"
	KindTimeSeries  StepKind = "time_series"
)

// Kinds lists every known step kind, in no particular order of meaning.
var Kinds = []StepKind{
	KindCustom, KindCorrelation, KindCrosstab, KindKeyDriver,
	KindOutlier, KindSummary, KindTimeSeries,
}

// Filter is a row-selection predicate applied before (or, for custom
// steps, also after) computation. eq/neq/contains compare the
// case-insensitive string forms; gt/lt require numeric coercion of both
// sides; in/not_in take a list value.
type Filter struct {
	Column   string      `json:"column"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Transformation rewrites or fans out a target column before the final
// operation runs.
type Transformation struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// ColumnTransformation binds a transformation list to one column, used
// by steps that transform several columns independently.
type ColumnTransformation struct {
	ColumnName      string           `json:"column_name"`
	Transformations []Transformation `json:"transformations"`
}

// Step is one declarative analysis instruction. It is a tagged variant:
// Type selects the kind and only that kind's fields are meaningful.
type Step struct {
	Type       StepKind `json:"type"`
	OutputName string   `json:"output_name"`
	Filters    []Filter `json:"filters,omitempty"`
	GroupBy    []string `json:"group_by,omitempty"`

	// custom
	TargetColumns             []string         `json:"target_columns,omitempty"`
	Transformations           []Transformation `json:"transformations,omitempty"`
	Operation                 string           `json:"operation,omitempty"`
	PostTransformationFilters []Filter         `json:"post_transformation_filters,omitempty"`

	// summary_stats
	NumericColumns        []string               `json:"numeric_columns,omitempty"`
	ColumnTransformations []ColumnTransformation `json:"column_transformations,omitempty"`

	// crosstab
	IndexColumn     string `json:"index_column,omitempty"`
	ColumnToCompare string `json:"column_to_compare,omitempty"`
	ShowPercentages string `json:"show_percentages,omitempty"`

	// outlier_detection (Threshold also serves correlation)
	Method    string   `json:"method,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`

	// key_driver
	TargetVariable      string   `json:"target_variable,omitempty"`
	FeatureColumns      []string `json:"feature_columns,omitempty"`
	CategoricalFeatures []string `json:"categorical_features,omitempty"`
	PValueThreshold     *float64 `json:"p_value_threshold,omitempty"`
	IncludeIntercept    *bool    `json:"include_intercept,omitempty"`

	// time_series
	MetricColumn string `json:"metric_column,omitempty"`
	Metric       string `json:"metric,omitempty"`
	DateColumn   string `json:"date_column,omitempty"`
	Frequency    string `json:"frequency,omitempty"`

	// correlation
	Sources []string `json:"sources,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

// Recipe is the full analysis request: output filename plus ordered steps.
// It is a stateless value owned by a single execution.
type Recipe struct {
	OutputFilename string `json:"output_filename"`
	Steps          []Step `json:"analysis_steps"`
}

// Parse decodes and validates a recipe JSON document.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Validation("", "invalid recipe JSON: "+err.Error())
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// ScalarString returns the filter value as a string for scalar-operator
// comparison. JSON numbers render without a trailing ".0" so "3" and 3
// compare equal against cell text.
func (f *Filter) ScalarString() (string, bool) {
	switch v := f.Value.(type) {
	case string:
		return v, true
	case float64:
		return formatJSONNumber(v), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// ListStrings returns the filter value as a string list for in/not_in.
func (f *Filter) ListStrings() ([]string, bool) {
	items, ok := f.Value.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, formatJSONNumber(v))
		case bool:
			if v {
				out = append(out, "true")
			} else {
				out = append(out, "false")
			}
		default:
			return nil, false
		}
	}
	return out, true
}

// Number returns the filter value as a float for gt/lt comparison.
func (f *Filter) Number() (float64, bool) {
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// StringParam fetches a string parameter of a transformation.
func (t *Transformation) StringParam(key string) (string, bool) {
	raw, ok := t.Params[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// ValueParam fetches a parameter as its cell string form (fill_na may
// carry a string or a number).
func (t *Transformation) ValueParam(key string) (string, bool) {
	raw, ok := t.Params[key]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return formatJSONNumber(v), true
	default:
		return "", false
	}
}

// formatJSONNumber renders a decoded JSON number the way it would appear
// in a cell: integers without a decimal point.
func formatJSONNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
