package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"revenue-lab/internal/domain"
)

// olsResult holds the pieces of a least-squares fit the ADF test needs:
// coefficients, their standard errors, and the residual sum of squares.
type olsResult struct {
	coef []float64
	se   []float64
	ssr  float64
	nobs int
	nvar int
}

// fitOLS solves y = X*beta by QR least squares and computes coefficient
// standard errors from sigma^2 * (X'X)^-1. A rank-deficient design matrix is
// reported as a statistical-undefined error so the caller can surface it as
// an error result instead of panicking.
func fitOLS(rows [][]float64, y []float64) (*olsResult, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty regression sample", domain.ErrData)
	}
	k := len(rows[0])
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d regressors", domain.ErrStatUndefined, n, k)
	}

	x := mat.NewDense(n, k, nil)
	for i, row := range rows {
		x.SetRow(i, row)
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, yVec); err != nil {
		return nil, fmt.Errorf("%w: singular design matrix: %v", domain.ErrStatUndefined, err)
	}

	// Residual sum of squares.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, beta)
	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	sigma2 := ssr / float64(n-k)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: X'X not invertible: %v", domain.ErrStatUndefined, err)
	}

	res := &olsResult{
		coef: make([]float64, k),
		se:   make([]float64, k),
		ssr:  ssr,
		nobs: n,
		nvar: k,
	}
	for j := 0; j < k; j++ {
		res.coef[j] = beta.AtVec(j)
		res.se[j] = math.Sqrt(sigma2 * inv.At(j, j))
	}
	return res, nil
}

// aic is Akaike's criterion for an OLS fit under Gaussian errors.
func (r *olsResult) aic() float64 {
	n := float64(r.nobs)
	llf := -n / 2 * (1 + math.Log(2*math.Pi) + math.Log(r.ssr/n))
	return -2*llf + 2*float64(r.nvar)
}
