package domain

import "time"

// ScenarioSpec describes a what-if perturbation of the exogenous features.
// It is a pure transformation descriptor: promo_count and oil_price columns
// are scaled by (1 + pct/100); everything else is left unchanged.
type ScenarioSpec struct {
	PromoChangePct float64
	OilChangePct   float64
	HorizonDays    int
}

// ScenarioBaseline is the scenario identifier for unperturbed runs.
const ScenarioBaseline = "baseline"

// ScenarioRecord is a persisted scenario run: its parameters and the revenue
// impact relative to the baseline forecast over the same horizon.
type ScenarioRecord struct {
	ScenarioID    string
	Spec          ScenarioSpec
	RevenueImpact float64 // percent change of summed forecast vs baseline over the horizon
	CreatedAt     time.Time
}
