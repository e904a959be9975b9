package inference

import (
	"errors"
	"math"
	"testing"

	"revenue-lab/internal/domain"
)

func TestTwoSampleTest_ClearDifference(t *testing.T) {
	groupA := []float64{110, 112, 108, 111, 109, 110, 112, 108}
	groupB := []float64{100, 101, 99, 100, 100, 101, 99, 100}

	res, err := TwoSampleTest(groupA, groupB)
	if err != nil {
		t.Fatalf("TwoSampleTest returned error: %v", err)
	}

	if res.TStatistic <= 0 {
		t.Errorf("expected positive t-statistic for higher group A, got %f", res.TStatistic)
	}
	if !res.Significant {
		t.Errorf("expected a significant result, p=%f", res.PValue)
	}
	if math.Abs(res.LiftPct-10) > 0.1 {
		t.Errorf("expected lift near 10%%, got %f", res.LiftPct)
	}
	if res.Effect != domain.EffectLarge {
		t.Errorf("expected large effect, got %s (d=%f)", res.Effect, res.CohensD)
	}
	if res.GroupAN != 8 || res.GroupBN != 8 {
		t.Errorf("unexpected group sizes: %d, %d", res.GroupAN, res.GroupBN)
	}
}

func TestTwoSampleTest_IdenticalGroups(t *testing.T) {
	group := []float64{5, 5, 5}

	res, err := TwoSampleTest(group, group)
	if err != nil {
		t.Fatalf("TwoSampleTest returned error: %v", err)
	}
	if res.TStatistic != 0 || res.PValue != 1 {
		t.Errorf("expected t=0 p=1 for identical constant groups, got t=%f p=%f", res.TStatistic, res.PValue)
	}
	if res.Significant {
		t.Error("identical groups must not be significant")
	}
	if res.CohensD != 0 {
		t.Errorf("expected zero effect size, got %f", res.CohensD)
	}
}

func TestTwoSampleTest_ZeroVarianceDifferentMeans(t *testing.T) {
	res, err := TwoSampleTest([]float64{10, 10}, []float64{5, 5})
	if err != nil {
		t.Fatalf("TwoSampleTest returned error: %v", err)
	}
	if !math.IsInf(res.TStatistic, 1) {
		t.Errorf("expected +Inf t-statistic, got %f", res.TStatistic)
	}
	if res.PValue != 0 || !res.Significant {
		t.Errorf("expected p=0 significant, got p=%f", res.PValue)
	}
}

func TestTwoSampleTest_DegenerateInputs(t *testing.T) {
	if _, err := TwoSampleTest(nil, []float64{1}); !errors.Is(err, domain.ErrData) {
		t.Errorf("expected ErrData for empty group, got %v", err)
	}
	// Zero group-B mean leaves the lift undefined.
	if _, err := TwoSampleTest([]float64{1, 2}, []float64{-1, 1}); !errors.Is(err, domain.ErrStatUndefined) {
		t.Errorf("expected ErrStatUndefined for zero lift denominator, got %v", err)
	}
}

func TestPromotionImpact_PartitionsByPromoCount(t *testing.T) {
	table := domain.NewFeatureTable(10)
	promo := table.Columns[domain.ColPromoCount]
	for i := 0; i < 10; i++ {
		if i < 5 {
			promo[i] = 3
			table.Sales[i] = 150 + float64(i)
		} else {
			table.Sales[i] = 100 + float64(i)
		}
	}

	res, err := PromotionImpact(table)
	if err != nil {
		t.Fatalf("PromotionImpact returned error: %v", err)
	}
	if res.GroupAN != 5 || res.GroupBN != 5 {
		t.Errorf("unexpected partition sizes: promo=%d rest=%d", res.GroupAN, res.GroupBN)
	}
	if res.GroupAMean <= res.GroupBMean {
		t.Errorf("expected promo days to average higher: %f vs %f", res.GroupAMean, res.GroupBMean)
	}
}

func TestHolidayImpact_PartitionsByFlag(t *testing.T) {
	table := domain.NewFeatureTable(8)
	holiday := table.Columns[domain.ColIsHoliday]
	for i := 0; i < 8; i++ {
		if i%4 == 0 {
			holiday[i] = 1
			table.Sales[i] = 200 + float64(i)
		} else {
			table.Sales[i] = 100 + float64(i)
		}
	}

	res, err := HolidayImpact(table)
	if err != nil {
		t.Fatalf("HolidayImpact returned error: %v", err)
	}
	if res.GroupAN != 2 || res.GroupBN != 6 {
		t.Errorf("unexpected partition sizes: holiday=%d rest=%d", res.GroupAN, res.GroupBN)
	}
	if res.LiftPct <= 0 {
		t.Errorf("expected positive holiday lift, got %f", res.LiftPct)
	}
}
