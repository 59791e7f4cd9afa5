package recipe

import (
	"fmt"

	"reportauto/domain/table"
	"reportauto/internal/errors"
)

// Validation is closed-world: an operator, action, kind or option value
// outside the sets below rejects the whole request before any
// computation runs. Column references are NOT checked here; a missing
// column is a per-step data error at execution time.

var filterOperators = map[string]bool{
	"eq": true, "neq": true, "gt": true, "lt": true,
	"in": true, "not_in": true, "contains": true,
}

var listOperators = map[string]bool{"in": true, "not_in": true}

var transformationActions = map[string]bool{
	"strip_whitespace": true, "split_and_explode": true,
	"to_root_node": true, "to_numeric": true, "fill_na": true,
}

var customOperations = map[string]bool{
	"average": true, "sum": true, "median": true, "duplicate_count": true,
	"distribution": true, "value_count": true, "list_unique_values": true,
}

var percentageModes = map[string]bool{
	"none": true, "index": true, "columns": true, "all": true,
}

var outlierMethods = map[string]bool{"iqr": true, "z-score": true}

var timeSeriesMetrics = map[string]bool{"sum": true, "average": true, "count": true}

var timeSeriesFrequencies = map[string]bool{"D": true, "W": true, "M": true}

// Transformation whitelists for the steps that only tolerate a subset.
var crosstabTransformations = map[string]bool{
	"strip_whitespace": true, "split_and_explode": true,
}

var summaryTransformations = map[string]bool{
	"strip_whitespace": true, "split_and_explode": true,
	"to_numeric": true, "fill_na": true,
}

// Defaults applied by Validate when the recipe leaves a knob unset.
const (
	DefaultOutputFilename       = "generated_report.csv"
	DefaultCorrelationThreshold = 0.2
	DefaultOutlierThreshold     = 1.5
	DefaultPValueThreshold      = 0.05
)

// Validate checks the recipe against the closed step schema, fills in
// defaults, and returns a VALIDATION_ERROR with a field-level path on
// the first violation.
func (r *Recipe) Validate() error {
	if r.OutputFilename == "" {
		r.OutputFilename = DefaultOutputFilename
	}
	for i := range r.Steps {
		if err := r.Steps[i].validate(fmt.Sprintf("analysis_steps[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Step) validate(path string) error {
	if s.OutputName == "" {
		return errors.Validation(path+".output_name", "output_name is required")
	}
	if err := validateFilters(s.Filters, path+".filters"); err != nil {
		return err
	}

	switch s.Type {
	case KindCustom:
		return s.validateCustom(path)
	case KindCorrelation:
		return s.validateCorrelation(path)
	case KindCrosstab:
		return s.validateCrosstab(path)
	case KindKeyDriver:
		return s.validateKeyDriver(path)
	case KindOutlier:
		return s.validateOutlier(path)
	case KindSummary:
		return s.validateSummary(path)
	case KindTimeSeries:
		return s.validateTimeSeries(path)
	default:
		return errors.Validationf(path+".type", "unknown analysis type %q", string(s.Type))
	}
}

func validateFilters(filters []Filter, path string) error {
	for i, f := range filters {
		fp := fmt.Sprintf("%s[%d]", path, i)
		if f.Column == "" {
			return errors.Validation(fp+".column", "filter column is required")
		}
		if !filterOperators[f.Operator] {
			return errors.Validationf(fp+".operator", "unknown filter operator %q", f.Operator)
		}
		if listOperators[f.Operator] {
			if _, ok := f.ListStrings(); !ok {
				return errors.Validationf(fp+".value", "operator %q requires a list value", f.Operator)
			}
		} else {
			if _, ok := f.ScalarString(); !ok {
				return errors.Validationf(fp+".value", "operator %q requires a scalar value", f.Operator)
			}
		}
	}
	return nil
}

func validateTransformations(transforms []Transformation, allowed map[string]bool, path string) error {
	explodeSeen, rootSeen, numericSeen := false, false, false
	for i, t := range transforms {
		tp := fmt.Sprintf("%s[%d]", path, i)
		if !transformationActions[t.Action] {
			return errors.Validationf(tp+".action", "unknown transformation action %q", t.Action)
		}
		if allowed != nil && !allowed[t.Action] {
			return errors.Validationf(tp+".action", "transformation %q is not supported by this analysis", t.Action)
		}
		switch t.Action {
		case "split_and_explode", "to_root_node":
			if d, ok := t.StringParam("delimiter"); !ok || d == "" {
				return errors.Validationf(tp+".params.delimiter", "%s requires a delimiter", t.Action)
			}
			if numericSeen {
				return errors.Validationf(tp+".action", "%s must run before to_numeric", t.Action)
			}
			if t.Action == "split_and_explode" {
				explodeSeen = true
			} else {
				rootSeen = true
			}
			if explodeSeen && rootSeen {
				return errors.Validation(tp+".action", "split_and_explode and to_root_node are mutually exclusive")
			}
		case "to_numeric":
			numericSeen = true
		case "fill_na":
			if _, ok := t.ValueParam("value"); !ok {
				return errors.Validation(tp+".params.value", "fill_na requires a default value")
			}
		}
	}
	return nil
}

func validateColumnTransformations(cts []ColumnTransformation, allowed map[string]bool, path string) error {
	for i, ct := range cts {
		cp := fmt.Sprintf("%s[%d]", path, i)
		if ct.ColumnName == "" {
			return errors.Validation(cp+".column_name", "column_name is required")
		}
		if err := validateTransformations(ct.Transformations, allowed, cp+".transformations"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Step) validateCustom(path string) error {
	if len(s.TargetColumns) == 0 {
		return errors.Validation(path+".target_columns", "at least one target column is required")
	}
	if !customOperations[s.Operation] {
		return errors.Validationf(path+".operation", "unknown custom operation %q", s.Operation)
	}
	if err := validateTransformations(s.Transformations, nil, path+".transformations"); err != nil {
		return err
	}
	return validateFilters(s.PostTransformationFilters, path+".post_transformation_filters")
}

func (s *Step) validateCorrelation(path string) error {
	if len(s.Sources) == 0 {
		return errors.Validation(path+".sources", "at least one source column is required")
	}
	if len(s.Targets) == 0 {
		return errors.Validation(path+".targets", "at least one target column is required")
	}
	if s.Threshold == nil {
		v := DefaultCorrelationThreshold
		s.Threshold = &v
	}
	if *s.Threshold < 0 || *s.Threshold > 1 {
		return errors.Validation(path+".threshold", "correlation threshold must be within [0, 1]")
	}
	return nil
}

func (s *Step) validateCrosstab(path string) error {
	if s.IndexColumn == "" {
		return errors.Validation(path+".index_column", "index_column is required")
	}
	if s.ColumnToCompare == "" {
		return errors.Validation(path+".column_to_compare", "column_to_compare is required")
	}
	if s.ShowPercentages == "" {
		s.ShowPercentages = "none"
	}
	if !percentageModes[s.ShowPercentages] {
		return errors.Validationf(path+".show_percentages", "unknown percentage mode %q", s.ShowPercentages)
	}
	return validateColumnTransformations(s.ColumnTransformations, crosstabTransformations, path+".column_transformations")
}

func (s *Step) validateKeyDriver(path string) error {
	if s.TargetVariable == "" {
		return errors.Validation(path+".target_variable", "target_variable is required")
	}
	if len(s.FeatureColumns) == 0 {
		return errors.Validation(path+".feature_columns", "at least one feature column is required")
	}
	// Membership is checked on normalized names, the same resolution the
	// engine applies, so "Region" and "region" reference one column.
	features := make(map[string]bool, len(s.FeatureColumns))
	for _, f := range s.FeatureColumns {
		features[table.Normalize(f)] = true
	}
	for i, c := range s.CategoricalFeatures {
		if !features[table.Normalize(c)] {
			return errors.Validationf(fmt.Sprintf("%s.categorical_features[%d]", path, i),
				"categorical feature %q is not in feature_columns", c)
		}
	}
	if s.PValueThreshold == nil {
		v := DefaultPValueThreshold
		s.PValueThreshold = &v
	}
	if *s.PValueThreshold < 0 || *s.PValueThreshold > 1 {
		return errors.Validation(path+".p_value_threshold", "p_value_threshold must be within [0, 1]")
	}
	if s.IncludeIntercept == nil {
		v := true
		s.IncludeIntercept = &v
	}
	return nil
}

func (s *Step) validateOutlier(path string) error {
	if len(s.TargetColumns) == 0 {
		return errors.Validation(path+".target_columns", "at least one target column is required")
	}
	if s.Method == "" {
		s.Method = "iqr"
	}
	if !outlierMethods[s.Method] {
		return errors.Validationf(path+".method", "unknown outlier method %q", s.Method)
	}
	if s.Threshold == nil {
		v := DefaultOutlierThreshold
		s.Threshold = &v
	}
	if *s.Threshold <= 0 {
		return errors.Validation(path+".threshold", "outlier threshold must be positive")
	}
	return nil
}

func (s *Step) validateSummary(path string) error {
	if len(s.NumericColumns) == 0 {
		return errors.Validation(path+".numeric_columns", "at least one numeric column is required")
	}
	return validateColumnTransformations(s.ColumnTransformations, summaryTransformations, path+".column_transformations")
}

func (s *Step) validateTimeSeries(path string) error {
	if s.DateColumn == "" {
		return errors.Validation(path+".date_column", "date_column is required")
	}
	if s.MetricColumn == "" {
		return errors.Validation(path+".metric_column", "metric_column is required")
	}
	if !timeSeriesMetrics[s.Metric] {
		return errors.Validationf(path+".metric", "unknown time series metric %q", s.Metric)
	}
	if !timeSeriesFrequencies[s.Frequency] {
		return errors.Validationf(path+".frequency", "unknown frequency %q (want D, W or M)", s.Frequency)
	}
	return nil
}
