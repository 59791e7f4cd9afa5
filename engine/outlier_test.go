package engine

import (
	"testing"

	"reportauto/domain/recipe"
	"reportauto/internal/testkit"
)

func TestOutlierIQRFlagsOnlyTheExtreme(t *testing.T) {
	tbl := testkit.NumericColumn("v", "1", "2", "3", "4", "5", "100")
	step := &recipe.Step{
		Type:          recipe.KindOutlier,
		OutputName:    "outliers",
		TargetColumns: []string{"v"},
		Method:        "iqr",
		Threshold:     testkit.FloatPtr(1.5),
	}
	section, _, err := runOutlier(newView(tbl), step)
	if err != nil {
		t.Fatalf("runOutlier: %v", err)
	}

	if len(section.Rows) != 1 {
		t.Fatalf("rows = %v", section.Rows)
	}
	row := section.Rows[0]
	if row[0] != "v" || row[1] != "6" || row[2] != "100" || row[3] != "iqr" {
		t.Errorf("flagged row = %v", row)
	}
	// Q3 + 1.5*IQR = 4.75 + 3.75
	if row[4] != "8.50" {
		t.Errorf("violated bound = %q", row[4])
	}
}

func TestOutlierZScore(t *testing.T) {
	tbl := testkit.NumericColumn("v", "1", "2", "3", "4", "5", "100")
	step := &recipe.Step{
		Type:          recipe.KindOutlier,
		OutputName:    "outliers",
		TargetColumns: []string{"v"},
		Method:        "z-score",
		Threshold:     testkit.FloatPtr(2),
	}
	section, _, err := runOutlier(newView(tbl), step)
	if err != nil {
		t.Fatalf("runOutlier: %v", err)
	}
	if len(section.Rows) != 1 {
		t.Fatalf("rows = %v", section.Rows)
	}
	row := section.Rows[0]
	if row[1] != "6" || row[2] != "100" || row[3] != "z-score" {
		t.Errorf("flagged row = %v", row)
	}
	// The last column carries the observation's z, beyond the cutoff.
	if row[4] != "2.04" {
		t.Errorf("z = %q", row[4])
	}
}

func TestOutlierMarkerRows(t *testing.T) {
	tbl := testkit.Rows(
		[]string{"text", "uniform"},
		[][]string{{"a", "5"}, {"b", "5"}, {"c", "5"}},
	)
	step := &recipe.Step{
		Type:          recipe.KindOutlier,
		OutputName:    "outliers",
		TargetColumns: []string{"text", "uniform"},
		Method:        "iqr",
		Threshold:     testkit.FloatPtr(1.5),
	}
	section, _, err := runOutlier(newView(tbl), step)
	if err != nil {
		t.Fatalf("runOutlier: %v", err)
	}
	if len(section.Rows) != 2 {
		t.Fatalf("rows = %v", section.Rows)
	}
	if section.Rows[0][2] != "No numeric data for analysis" {
		t.Errorf("text column marker = %v", section.Rows[0])
	}
	if section.Rows[1][2] != "No outliers detected" {
		t.Errorf("uniform column marker = %v", section.Rows[1])
	}
}

func TestOutlierRowIDsSurviveFiltering(t *testing.T) {
	tbl := testkit.Rows(
		[]string{"keep", "v"},
		[][]string{
			{"no", "999"},
			{"yes", "1"}, {"yes", "2"}, {"yes", "3"},
			{"yes", "4"}, {"yes", "5"}, {"yes", "100"},
		},
	)
	v, err := applyFilters(newView(tbl), []recipe.Filter{{Column: "keep", Operator: "eq", Value: "yes"}})
	if err != nil {
		t.Fatalf("applyFilters: %v", err)
	}
	step := &recipe.Step{
		Type:          recipe.KindOutlier,
		OutputName:    "outliers",
		TargetColumns: []string{"v"},
		Method:        "iqr",
		Threshold:     testkit.FloatPtr(1.5),
	}
	section, _, err := runOutlier(v, step)
	if err != nil {
		t.Fatalf("runOutlier: %v", err)
	}
	if len(section.Rows) != 1 || section.Rows[0][1] != "7" {
		t.Errorf("expected source row 7 flagged, got %v", section.Rows)
	}
}
