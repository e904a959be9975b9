package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"revenue-lab/internal/domain"
)

// StationarityTest runs an Augmented Dickey-Fuller test (constant term, no
// trend) on the series after dropping missing values. The lag order is chosen
// by AIC up to Schwert's rule. The p-value is the MacKinnon approximation and
// the critical values come from the MacKinnon (2010) response surface.
//
// Degenerate series (too short, constant, collinear lags) are reported as
// errors wrapping ErrStatUndefined rather than propagated as NaN.
func StationarityTest(series []float64, alpha float64) (*domain.StationarityResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, fmt.Errorf("%w: alpha must be in (0, 1), got %v", domain.ErrData, alpha)
	}

	y := dropNaN(series)
	n := len(y)
	if n < 12 {
		return nil, fmt.Errorf("%w: %d observations is too short for an ADF test", domain.ErrStatUndefined, n)
	}
	if isConstant(y) {
		return nil, fmt.Errorf("%w: constant series has no unit-root behavior to test", domain.ErrStatUndefined)
	}

	maxLag := int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	if limit := n/2 - 3; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = y[i] - y[i-1]
	}

	// Lag selection: all candidates fitted over the same sample (the one the
	// largest lag allows) so AIC values are comparable.
	bestLag := 0
	bestAIC := math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		fit, err := adfRegression(y, diff, lag, maxLag)
		if err != nil {
			continue
		}
		if a := fit.aic(); a < bestAIC {
			bestAIC = a
			bestLag = lag
		}
	}
	if math.IsInf(bestAIC, 1) {
		return nil, fmt.Errorf("%w: every ADF regression was degenerate", domain.ErrStatUndefined)
	}

	// Final fit uses the full sample the chosen lag allows.
	fit, err := adfRegression(y, diff, bestLag, bestLag)
	if err != nil {
		return nil, err
	}
	if fit.se[0] == 0 {
		return nil, fmt.Errorf("%w: zero standard error in ADF regression", domain.ErrStatUndefined)
	}

	stat := fit.coef[0] / fit.se[0]
	p := mackinnonP(stat)

	return &domain.StationarityResult{
		Statistic:      stat,
		PValue:         p,
		UsedLag:        bestLag,
		NObs:           fit.nobs,
		CriticalValues: mackinnonCrit(fit.nobs),
		Stationary:     p < alpha,
	}, nil
}

// adfRegression fits diff[t] = beta*y[t] + sum gamma_i*diff[t-i] + const over
// the sample that startLag rows of lookback allow.
func adfRegression(y, diff []float64, lag, startLag int) (*olsResult, error) {
	// diff[t] corresponds to y[t+1]-y[t]; usable t starts after startLag.
	nDiff := len(diff)
	rows := make([][]float64, 0, nDiff-startLag)
	resp := make([]float64, 0, nDiff-startLag)
	for t := startLag; t < nDiff; t++ {
		row := make([]float64, 0, lag+2)
		row = append(row, y[t]) // lagged level
		for i := 1; i <= lag; i++ {
			row = append(row, diff[t-i])
		}
		row = append(row, 1) // constant
		rows = append(rows, row)
		resp = append(resp, diff[t])
	}
	return fitOLS(rows, resp)
}

// MacKinnon (1994) approximate asymptotic p-value for the constant-only ADF
// regression: p = Phi(poly(tau)) with separate small-p and large-p surfaces.
var (
	adfTauStar   = -1.61
	adfTauMin    = -18.83
	adfTauMax    = 2.74
	adfTauSmallP = []float64{2.1659, 1.4412, 0.038269}
	adfTauLargeP = []float64{1.7339, 0.93202, -0.12745, -0.010368}
)

func mackinnonP(tau float64) float64 {
	if tau > adfTauMax {
		return 1
	}
	if tau < adfTauMin {
		return 0
	}
	coeffs := adfTauLargeP
	if tau <= adfTauStar {
		coeffs = adfTauSmallP
	}
	return distuv.UnitNormal.CDF(polyval(coeffs, tau))
}

// polyval evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func polyval(coeffs []float64, x float64) float64 {
	v := 0.0
	pow := 1.0
	for _, c := range coeffs {
		v += c * pow
		pow *= x
	}
	return v
}

// MacKinnon (2010) finite-sample critical values for the constant-only case:
// crit = tau_inf + b1/T + b2/T^2 + b3/T^3.
var adfCritSurface = map[string][4]float64{
	"1%":  {-3.43035, -6.5393, -16.786, -79.433},
	"5%":  {-2.86154, -2.8903, -4.234, -40.04},
	"10%": {-2.56677, -1.5384, -2.809, 0},
}

func mackinnonCrit(nobs int) map[string]float64 {
	t := float64(nobs)
	out := make(map[string]float64, len(adfCritSurface))
	for level, b := range adfCritSurface {
		out[level] = b[0] + b[1]/t + b[2]/(t*t) + b[3]/(t*t*t)
	}
	return out
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
