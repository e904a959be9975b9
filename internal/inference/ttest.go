package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"revenue-lab/internal/domain"
)

// significanceAlpha is the fixed significance level for hypothesis tests.
const significanceAlpha = 0.05

// TwoSampleTest compares the target series across a boolean driver:
// group A is the rows where the indicator holds (promotion days, holidays),
// group B the rest.
//
// The t-test is Welch's unequal-variance variant, applied consistently for
// both promotion and holiday analysis. Cohen's d uses the pooled standard
// deviation, and lift is (meanA - meanB) / meanB * 100.
//
// Degenerate inputs return error-tagged results rather than NaN: an empty
// group or a zero lift denominator is an explicit error. When both groups
// have zero variance and equal means the test reports t=0, p=1. Zero variance
// with differing means reports an infinite t-statistic with p=0, which is the
// honest limit of the statistic.
func TwoSampleTest(groupA, groupB []float64) (*domain.HypothesisTestResult, error) {
	na, nb := len(groupA), len(groupB)
	if na == 0 || nb == 0 {
		return nil, fmt.Errorf("%w: empty comparison group (a=%d, b=%d)", domain.ErrData, na, nb)
	}

	meanA := stat.Mean(groupA, nil)
	meanB := stat.Mean(groupB, nil)
	if meanB == 0 {
		return nil, fmt.Errorf("%w: zero denominator for lift", domain.ErrStatUndefined)
	}

	varA := sampleVariance(groupA)
	varB := sampleVariance(groupB)

	res := &domain.HypothesisTestResult{
		GroupAMean: meanA,
		GroupBMean: meanB,
		GroupAN:    na,
		GroupBN:    nb,
		LiftPct:    (meanA - meanB) / meanB * 100,
	}

	denom := math.Sqrt(varA/float64(na) + varB/float64(nb))
	switch {
	case denom == 0 && meanA == meanB:
		res.TStatistic = 0
		res.PValue = 1
	case denom == 0 || na < 2 || nb < 2:
		// No variance to test against, or a singleton group: the mean
		// difference is either exact or untestable by Welch df.
		if meanA == meanB {
			res.TStatistic = 0
			res.PValue = 1
		} else {
			res.TStatistic = math.Inf(sign(meanA - meanB))
			res.PValue = 0
		}
	default:
		res.TStatistic = (meanA - meanB) / denom
		df := welchDF(varA, varB, na, nb)
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		res.PValue = 2 * tDist.CDF(-math.Abs(res.TStatistic))
	}
	res.Significant = res.PValue < significanceAlpha

	res.CohensD = cohensD(meanA, meanB, varA, varB, na, nb)
	res.Effect = classifyEffect(res.CohensD)

	return res, nil
}

// welchDF is the Welch-Satterthwaite degrees of freedom.
func welchDF(varA, varB float64, na, nb int) float64 {
	fa := varA / float64(na)
	fb := varB / float64(nb)
	num := (fa + fb) * (fa + fb)
	den := fa*fa/float64(na-1) + fb*fb/float64(nb-1)
	return num / den
}

// cohensD computes the standardized mean difference with the pooled standard
// deviation. A zero pooled deviation yields 0 for equal means and an infinite
// d otherwise.
func cohensD(meanA, meanB, varA, varB float64, na, nb int) float64 {
	dof := float64(na + nb - 2)
	if dof <= 0 {
		if meanA == meanB {
			return 0
		}
		return math.Inf(sign(meanA - meanB))
	}
	pooled := math.Sqrt((float64(na-1)*varA + float64(nb-1)*varB) / dof)
	if pooled == 0 {
		if meanA == meanB {
			return 0
		}
		return math.Inf(sign(meanA - meanB))
	}
	return (meanA - meanB) / pooled
}

// classifyEffect buckets |d| by the conventional 0.5 / 0.8 thresholds.
func classifyEffect(d float64) domain.EffectSize {
	abs := math.Abs(d)
	switch {
	case abs >= 0.8:
		return domain.EffectLarge
	case abs >= 0.5:
		return domain.EffectMedium
	default:
		return domain.EffectSmall
	}
}

// sampleVariance is the n-1 denominator variance; zero for singleton samples.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

func sign(v float64) int {
	if v < 0 {
		return -1
	}
	return 1
}

// PromotionImpact partitions the table by promo_count > 0 and tests the sales
// difference between promotion and non-promotion days.
func PromotionImpact(t *domain.FeatureTable) (*domain.HypothesisTestResult, error) {
	promo, err := t.Column(domain.ColPromoCount)
	if err != nil {
		return nil, err
	}
	var groupA, groupB []float64
	for i, v := range promo {
		if v > 0 {
			groupA = append(groupA, t.Sales[i])
		} else {
			groupB = append(groupB, t.Sales[i])
		}
	}
	return TwoSampleTest(groupA, groupB)
}

// HolidayImpact partitions the table by the holiday flag and tests the sales
// difference between holidays and regular days.
func HolidayImpact(t *domain.FeatureTable) (*domain.HypothesisTestResult, error) {
	holiday, err := t.Column(domain.ColIsHoliday)
	if err != nil {
		return nil, err
	}
	var groupA, groupB []float64
	for i, v := range holiday {
		if v == 1 {
			groupA = append(groupA, t.Sales[i])
		} else {
			groupB = append(groupB, t.Sales[i])
		}
	}
	return TwoSampleTest(groupA, groupB)
}
