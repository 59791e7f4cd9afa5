package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestQuantileInterpolates(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	if got := Quantile(data, 0.5); !almostEqual(got, 2.5, 1e-9) {
		t.Errorf("median = %v", got)
	}
	if got := Quantile(data, 0.25); !almostEqual(got, 1.75, 1e-9) {
		t.Errorf("p25 = %v", got)
	}
	if got := Quantile(data, 0); got != 1 {
		t.Errorf("p0 = %v", got)
	}
	if got := Quantile(data, 1); got != 4 {
		t.Errorf("p100 = %v", got)
	}
	if got := Quantile(nil, 0.5); !math.IsNaN(got) {
		t.Errorf("empty quantile = %v", got)
	}
}

func TestIQRBounds(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 100}
	lower, upper := IQRBounds(data, 1.5)
	// Q1 = 2.25, Q3 = 4.75, IQR = 2.5
	if !almostEqual(lower, -1.5, 1e-9) || !almostEqual(upper, 8.5, 1e-9) {
		t.Errorf("bounds = [%v, %v]", lower, upper)
	}
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	if got := Pearson(x, y); !almostEqual(got, 1, 1e-9) {
		t.Errorf("perfect positive = %v", got)
	}
	neg := []float64{10, 8, 6, 4, 2}
	if got := Pearson(x, neg); !almostEqual(got, -1, 1e-9) {
		t.Errorf("perfect negative = %v", got)
	}
	if got := Pearson(x, []float64{3, 3, 3, 3, 3}); !math.IsNaN(got) {
		t.Errorf("zero variance = %v", got)
	}
}

func TestCramersV(t *testing.T) {
	// Perfect association: category determines the target exactly.
	var x, y []string
	for i := 0; i < 50; i++ {
		x = append(x, "a")
		y = append(y, "p")
		x = append(x, "b")
		y = append(y, "q")
	}
	if got := CramersV(x, y); got < 0.9 {
		t.Errorf("perfect association = %v", got)
	}

	// Single category on one side is degenerate.
	if got := CramersV([]string{"a", "a"}, []string{"p", "q"}); !math.IsNaN(got) {
		t.Errorf("degenerate = %v", got)
	}
}

func TestCramersVOrderInvariant(t *testing.T) {
	x := []string{"a", "b", "a", "b", "a", "c", "c", "b"}
	y := []string{"p", "q", "p", "p", "q", "q", "p", "q"}
	first := CramersV(x, y)

	// Same pairs, reversed observation order.
	rx := make([]string, len(x))
	ry := make([]string, len(y))
	for i := range x {
		rx[len(x)-1-i] = x[i]
		ry[len(y)-1-i] = y[i]
	}
	if second := CramersV(rx, ry); first != second {
		t.Errorf("order-dependent result: %v vs %v", first, second)
	}
}

func TestCorrelationRatio(t *testing.T) {
	// Groups fully explain the values.
	cats := []string{"a", "a", "b", "b"}
	vals := []float64{1, 1, 9, 9}
	if got := CorrelationRatio(cats, vals); !almostEqual(got, 1, 1e-9) {
		t.Errorf("fully explained = %v", got)
	}

	// Groups explain nothing: identical means.
	cats = []string{"a", "a", "b", "b"}
	vals = []float64{1, 9, 1, 9}
	if got := CorrelationRatio(cats, vals); !almostEqual(got, 0, 1e-9) {
		t.Errorf("unexplained = %v", got)
	}
}

func TestFitOLSExactLine(t *testing.T) {
	// y = 3 + 2x with tiny noise-free data.
	rows := [][]float64{{1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5}}
	y := []float64{5, 7, 9, 11, 13}

	fit, err := FitOLS([]string{"const", "x"}, rows, y)
	if err != nil {
		t.Fatalf("FitOLS: %v", err)
	}
	if !almostEqual(fit.Terms[0].Coefficient, 3, 1e-6) {
		t.Errorf("intercept = %v", fit.Terms[0].Coefficient)
	}
	if !almostEqual(fit.Terms[1].Coefficient, 2, 1e-6) {
		t.Errorf("slope = %v", fit.Terms[1].Coefficient)
	}
	if !almostEqual(fit.RSquared, 1, 1e-6) {
		t.Errorf("r-squared = %v", fit.RSquared)
	}
}

func TestFitOLSSingularDesign(t *testing.T) {
	// Duplicate columns make X'X singular.
	rows := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	y := []float64{1, 2, 3}
	if _, err := FitOLS([]string{"a", "b"}, rows, y); err == nil {
		t.Fatal("expected singular design error")
	}
}

func TestFitOLSInsufficientRows(t *testing.T) {
	rows := [][]float64{{1, 2}}
	if _, err := FitOLS([]string{"a", "b"}, rows, []float64{1}); err == nil {
		t.Fatal("expected rank error")
	}
}

func TestDescriptiveNaNOnEmpty(t *testing.T) {
	for name, fn := range map[string]func([]float64) float64{
		"mean": Mean, "sum": Sum, "median": Median,
		"std": SampleStdDev, "min": Min, "max": Max,
	} {
		if got := fn(nil); !math.IsNaN(got) {
			t.Errorf("%s(nil) = %v, want NaN", name, got)
		}
	}
}
