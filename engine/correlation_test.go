package engine

import (
	"strconv"
	"testing"

	"reportauto/domain/recipe"
	"reportauto/internal/testkit"
)

func correlationStep(sources, targets []string, threshold float64) *recipe.Step {
	return &recipe.Step{
		Type:       recipe.KindCorrelation,
		OutputName: "corr",
		Sources:    sources,
		Targets:    targets,
		Threshold:  testkit.FloatPtr(threshold),
	}
}

func correlationFixture() view {
	return newView(testkit.Rows(
		[]string{"spend", "clicks", "channel"},
		[][]string{
			{"10", "100", "search"},
			{"20", "210", "search"},
			{"30", "290", "social"},
			{"40", "405", "social"},
			{"50", "495", "search"},
			{"60", "610", "social"},
		},
	))
}

func TestCorrelationPearsonPairIsSymmetric(t *testing.T) {
	v := correlationFixture()

	forward, _, err := runCorrelation(v, correlationStep([]string{"spend"}, []string{"clicks"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	backward, _, err := runCorrelation(v, correlationStep([]string{"clicks"}, []string{"spend"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}

	if len(forward.Rows) != 1 || len(backward.Rows) != 1 {
		t.Fatalf("rows = %v / %v", forward.Rows, backward.Rows)
	}
	if forward.Rows[0][2] != backward.Rows[0][2] {
		t.Errorf("asymmetric measure: %q vs %q", forward.Rows[0][2], backward.Rows[0][2])
	}
	if forward.Rows[0][3] != "Pearson" {
		t.Errorf("measure type = %q", forward.Rows[0][3])
	}
	m, err := strconv.ParseFloat(forward.Rows[0][2], 64)
	if err != nil || m < 0.99 {
		t.Errorf("spend/clicks correlation = %q", forward.Rows[0][2])
	}
}

func TestCorrelationSkipsSelfPairs(t *testing.T) {
	v := correlationFixture()
	section, _, err := runCorrelation(v, correlationStep([]string{"spend"}, []string{"spend", "clicks"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	for _, row := range section.Rows {
		if row[0] == "spend" && row[1] == "spend" {
			t.Fatal("self-pair not skipped")
		}
	}
	if len(section.Rows) != 1 {
		t.Errorf("rows = %v", section.Rows)
	}
}

func TestCorrelationThresholdDropsWeakPairs(t *testing.T) {
	v := newView(testkit.Rows(
		[]string{"a", "b"},
		[][]string{
			{"1", "5"}, {"2", "3"}, {"3", "8"}, {"4", "1"}, {"5", "6"}, {"6", "4"},
		},
	))
	section, _, err := runCorrelation(v, correlationStep([]string{"a"}, []string{"b"}, 0.95))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	if len(section.Rows) != 0 {
		t.Errorf("weak pair survived threshold: %v", section.Rows)
	}
}

func TestCorrelationMixedPairUsesEta(t *testing.T) {
	v := correlationFixture()
	section, _, err := runCorrelation(v, correlationStep([]string{"channel"}, []string{"spend"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	if len(section.Rows) != 1 {
		t.Fatalf("rows = %v", section.Rows)
	}
	if section.Rows[0][3] != "Eta" {
		t.Errorf("measure type = %q", section.Rows[0][3])
	}
	if section.Rows[0][4] != "6" {
		t.Errorf("n = %q", section.Rows[0][4])
	}
}

func TestCorrelationCategoricalPairUsesCramersV(t *testing.T) {
	v := newView(testkit.Rows(
		[]string{"plan", "churned"},
		[][]string{
			{"basic", "yes"}, {"basic", "yes"}, {"basic", "yes"}, {"basic", "no"},
			{"pro", "no"}, {"pro", "no"}, {"pro", "no"}, {"pro", "yes"},
			{"basic", "yes"}, {"pro", "no"}, {"basic", "yes"}, {"pro", "no"},
		},
	))
	section, _, err := runCorrelation(v, correlationStep([]string{"plan"}, []string{"churned"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	if len(section.Rows) != 1 {
		t.Fatalf("rows = %v", section.Rows)
	}
	if section.Rows[0][3] != "Cramér's V" {
		t.Errorf("measure type = %q", section.Rows[0][3])
	}
}

func TestCorrelationSortsByAbsoluteStrength(t *testing.T) {
	v := newView(testkit.Rows(
		[]string{"x", "strong", "weak"},
		[][]string{
			{"1", "2", "7"}, {"2", "4", "3"}, {"3", "6", "9"},
			{"4", "8", "2"}, {"5", "10", "8"}, {"6", "12", "5"},
		},
	))
	section, _, err := runCorrelation(v, correlationStep([]string{"x"}, []string{"strong", "weak"}, 0))
	if err != nil {
		t.Fatalf("runCorrelation: %v", err)
	}
	if len(section.Rows) < 1 || section.Rows[0][1] != "strong" {
		t.Errorf("strongest pair not first: %v", section.Rows)
	}
}
