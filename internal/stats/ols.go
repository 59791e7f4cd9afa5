package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// OLSTerm is one fitted regression term.
type OLSTerm struct {
	Name        string
	Coefficient float64
	StdError    float64
	PValue      float64
}

// OLSResult holds a fitted ordinary least squares model.
type OLSResult struct {
	Terms    []OLSTerm
	RSquared float64
	N        int
}

// FitOLS fits y on the design matrix rows (one row per observation, one
// column per term, intercept column included by the caller when wanted)
// and derives standard errors and two-sided t-test p-values. A design
// with no residual degrees of freedom or a singular normal matrix is an
// error, not a NaN result.
func FitOLS(termNames []string, rows [][]float64, y []float64) (*OLSResult, error) {
	n := len(rows)
	p := len(termNames)
	if n == 0 || p == 0 {
		return nil, fmt.Errorf("empty design matrix")
	}
	if len(y) != n {
		return nil, fmt.Errorf("design matrix has %d rows but %d responses", n, len(y))
	}
	df := n - p
	if df < 1 {
		return nil, fmt.Errorf("rank-deficient design: %d observations for %d terms", n, p)
	}

	x := mat.NewDense(n, p, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, fmt.Errorf("design row %d has %d terms, want %d", i, len(row), p)
		}
		x.SetRow(i, row)
	}
	yVec := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("singular design matrix: %w", err)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), yVec)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	rss := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}
	sigma2 := rss / float64(df)

	yMean := Mean(y)
	tss := 0.0
	for _, v := range y {
		tss += (v - yMean) * (v - yMean)
	}
	rSquared := 0.0
	if tss > 0 {
		rSquared = 1 - rss/tss
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	terms := make([]OLSTerm, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(sigma2 * xtxInv.At(j, j))
		coef := beta.AtVec(j)
		pValue := 1.0
		if se > 0 {
			t := coef / se
			pValue = 2 * (1 - tDist.CDF(math.Abs(t)))
		}
		terms[j] = OLSTerm{
			Name:        termNames[j],
			Coefficient: coef,
			StdError:    se,
			PValue:      pValue,
		}
	}

	return &OLSResult{Terms: terms, RSquared: rSquared, N: n}, nil
}
