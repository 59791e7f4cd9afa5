package engine

import (
	"testing"

	"reportauto/domain/recipe"
	"reportauto/internal/testkit"
)

func TestKeyDriverDropsInsignificantTerms(t *testing.T) {
	// y tracks x exactly up to small noise; z is constructed orthogonal
	// to y, so its coefficient is zero and its p-value is 1.
	tbl := testkit.Rows(
		[]string{"y", "x", "z"},
		[][]string{
			{"5.1", "1", "1"},
			{"6.9", "2", "1"},
			{"9.1", "3", "2"},
			{"10.9", "4", "2"},
			{"13.1", "5", "1"},
			{"14.9", "6", "1"},
			{"17.1", "7", "2"},
			{"18.9", "8", "2"},
		},
	)
	step := &recipe.Step{
		Type:             recipe.KindKeyDriver,
		OutputName:       "drivers",
		TargetVariable:   "y",
		FeatureColumns:   []string{"x", "z"},
		PValueThreshold:  testkit.FloatPtr(0.05),
		IncludeIntercept: testkit.BoolPtr(true),
	}

	section, _, err := runKeyDriver(newView(tbl), step)
	if err != nil {
		t.Fatalf("runKeyDriver: %v", err)
	}

	var names []string
	for _, row := range section.Rows {
		names = append(names, row[0])
	}
	if !containsString(names, "x") {
		t.Errorf("significant driver x missing: %v", names)
	}
	if containsString(names, "z") {
		t.Errorf("insignificant term z not filtered: %v", names)
	}
	if !containsString(names, "const") {
		t.Errorf("intercept missing: %v", names)
	}

	last := section.Rows[len(section.Rows)-1]
	if last[0] != "R-squared" {
		t.Errorf("last row = %v", last)
	}
	if last[2] != "" || last[3] != "" {
		t.Errorf("R-squared row should leave error columns blank: %v", last)
	}
}

func TestKeyDriverFiltersFeatureNamedConst(t *testing.T) {
	// A feature column that normalizes to "const" collides with the
	// intercept's term name. It must still be subject to the p-value
	// filter while the real intercept stays reported.
	tbl := testkit.Rows(
		[]string{"y", "x", "const"},
		[][]string{
			{"5.1", "1", "1"},
			{"6.9", "2", "1"},
			{"9.1", "3", "2"},
			{"10.9", "4", "2"},
			{"13.1", "5", "1"},
			{"14.9", "6", "1"},
			{"17.1", "7", "2"},
			{"18.9", "8", "2"},
		},
	)
	step := &recipe.Step{
		Type:             recipe.KindKeyDriver,
		OutputName:       "drivers",
		TargetVariable:   "y",
		FeatureColumns:   []string{"x", "const"},
		PValueThreshold:  testkit.FloatPtr(0.05),
		IncludeIntercept: testkit.BoolPtr(true),
	}

	section, _, err := runKeyDriver(newView(tbl), step)
	if err != nil {
		t.Fatalf("runKeyDriver: %v", err)
	}

	constRows := 0
	var names []string
	for _, row := range section.Rows {
		names = append(names, row[0])
		if row[0] == "const" {
			constRows++
		}
	}
	if constRows != 1 {
		t.Errorf("want exactly the intercept row named const, got %d: %v", constRows, names)
	}
	if !containsString(names, "x") {
		t.Errorf("significant driver x missing: %v", names)
	}
}

func TestKeyDriverDummyEncodesCategorical(t *testing.T) {
	tbl := testkit.Rows(
		[]string{"revenue", "segment"},
		[][]string{
			{"1.0", "basic"}, {"1.1", "basic"}, {"0.9", "basic"}, {"1.0", "basic"},
			{"5.0", "pro"}, {"5.1", "pro"}, {"4.9", "pro"}, {"5.0", "pro"},
		},
	)
	step := &recipe.Step{
		Type:                recipe.KindKeyDriver,
		OutputName:          "drivers",
		TargetVariable:      "revenue",
		FeatureColumns:      []string{"segment"},
		CategoricalFeatures: []string{"segment"},
		PValueThreshold:     testkit.FloatPtr(0.05),
		IncludeIntercept:    testkit.BoolPtr(true),
	}

	section, _, err := runKeyDriver(newView(tbl), step)
	if err != nil {
		t.Fatalf("runKeyDriver: %v", err)
	}

	// "basic" sorts first and is dropped as reference; the pro dummy's
	// coefficient is the group mean difference.
	var proRow []string
	for _, row := range section.Rows {
		if row[0] == "segment_pro" {
			proRow = row
		}
	}
	if proRow == nil {
		t.Fatalf("segment_pro term missing: %v", section.Rows)
	}
	if proRow[1] != "4.00" {
		t.Errorf("coefficient = %q", proRow[1])
	}
}

func TestKeyDriverSkipsUnusableRows(t *testing.T) {
	tbl := testkit.Rows(
		[]string{"y", "x"},
		[][]string{
			{"1", "1"}, {"2", "2"}, {"3", "3"}, {"n/a", "4"}, {"5", ""},
			{"4.1", "4"}, {"4.9", "5"},
		},
	)
	step := &recipe.Step{
		Type:             recipe.KindKeyDriver,
		OutputName:       "drivers",
		TargetVariable:   "y",
		FeatureColumns:   []string{"x"},
		PValueThreshold:  testkit.FloatPtr(1),
		IncludeIntercept: testkit.BoolPtr(true),
	}
	if _, _, err := runKeyDriver(newView(tbl), step); err != nil {
		t.Fatalf("runKeyDriver: %v", err)
	}
}

func TestKeyDriverAllRowsUnusable(t *testing.T) {
	tbl := testkit.Rows([]string{"y", "x"}, [][]string{{"a", "b"}, {"c", "d"}})
	step := &recipe.Step{
		Type:             recipe.KindKeyDriver,
		OutputName:       "drivers",
		TargetVariable:   "y",
		FeatureColumns:   []string{"x"},
		PValueThreshold:  testkit.FloatPtr(0.05),
		IncludeIntercept: testkit.BoolPtr(true),
	}
	if _, _, err := runKeyDriver(newView(tbl), step); err == nil {
		t.Fatal("expected compute error")
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
