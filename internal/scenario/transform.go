package scenario

import (
	"fmt"

	"revenue-lab/internal/domain"
)

// Apply produces the what-if feature input for a scenario: promo_count and
// oil_price are scaled by (1 + pct/100) on a clone of the table; every other
// column is left unchanged. Zero changes on both knobs make this the identity.
//
// Known limitation, kept deliberately: lag and rolling features are causally
// downstream of sales, not of the perturbed exogenous variables, and are NOT
// recomputed under the counterfactual. Scenario forecasts are therefore
// directionally indicative for exogenous-driven shifts, not a re-simulated
// time series. Recomputing lags under a hypothetical future is a causal
// simulation problem out of scope here.
func Apply(t *domain.FeatureTable, spec domain.ScenarioSpec) (*domain.FeatureTable, error) {
	out := t.Clone()

	promo, err := out.Column(domain.ColPromoCount)
	if err != nil {
		return nil, err
	}
	oil, err := out.Column(domain.ColOilPrice)
	if err != nil {
		return nil, err
	}

	promoFactor := 1 + spec.PromoChangePct/100
	oilFactor := 1 + spec.OilChangePct/100
	for i := range promo {
		promo[i] *= promoFactor
		oil[i] *= oilFactor
	}
	return out, nil
}

// Horizon trims the table to the last spec.HorizonDays rows, the window a
// what-if run forecasts over. A horizon longer than the table is a data error.
func Horizon(t *domain.FeatureTable, spec domain.ScenarioSpec) (*domain.FeatureTable, error) {
	if spec.HorizonDays <= 0 {
		return nil, fmt.Errorf("%w: non-positive horizon %d", domain.ErrData, spec.HorizonDays)
	}
	n := t.Len()
	if spec.HorizonDays > n {
		return nil, fmt.Errorf("%w: horizon %d exceeds %d available rows", domain.ErrData, spec.HorizonDays, n)
	}
	return t.Slice(n-spec.HorizonDays, n), nil
}
