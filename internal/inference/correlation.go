package inference

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"revenue-lab/internal/domain"
)

// minCorrelationObs is the minimum number of non-missing observations a
// feature needs before its correlation against the target is considered
// defined.
const minCorrelationObs = 10

// ScreenCorrelations computes the Pearson correlation and p-value of every
// feature column against the sales target, ranked by absolute correlation
// strength descending. Features with minCorrelationObs or fewer non-missing
// observations, or with zero variance, are returned as undefined and sort
// last. topN <= 0 returns the full ranking.
func ScreenCorrelations(t *domain.FeatureTable, topN int) []*domain.CorrelationResult {
	names := make([]string, 0, len(domain.FeatureColumns)+len(domain.ExtraColumns))
	names = append(names, domain.FeatureColumns...)
	names = append(names, domain.ExtraColumns...)

	results := make([]*domain.CorrelationResult, 0, len(names))
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			continue
		}
		results = append(results, correlateColumn(name, col, t.Sales))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Defined != results[j].Defined {
			return results[i].Defined
		}
		return math.Abs(results[i].Correlation) > math.Abs(results[j].Correlation)
	})

	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	return results
}

// correlateColumn computes one feature's Pearson correlation against the
// target over pairwise-complete rows.
func correlateColumn(name string, col, target []float64) *domain.CorrelationResult {
	var xs, ys []float64
	for i, v := range col {
		if math.IsNaN(v) || math.IsNaN(target[i]) {
			continue
		}
		xs = append(xs, v)
		ys = append(ys, target[i])
	}

	res := &domain.CorrelationResult{Feature: name, N: len(xs)}
	if len(xs) <= minCorrelationObs {
		return res
	}
	if populationStd(xs) == 0 || populationStd(ys) == 0 {
		// Constant column: correlation undefined.
		return res
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return res
	}

	res.Defined = true
	res.Correlation = r
	res.PValue = pearsonPValue(r, len(xs))
	res.Significant = res.PValue < significanceAlpha
	return res
}

// pearsonPValue is the two-sided p-value of a Pearson r under the null of no
// correlation, via the t transform with n-2 degrees of freedom.
func pearsonPValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if 1-r*r <= 0 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * tDist.CDF(-math.Abs(t))
}
