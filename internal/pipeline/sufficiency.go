package pipeline

import (
	"fmt"
	"sort"
	"time"

	"revenue-lab/internal/domain"
)

// Sufficiency thresholds. Training a boosted ensemble on a handful of days
// produces metrics that look precise and mean nothing, so the pipeline
// refuses to run below these floors.
const (
	minHistoryDays = 60
	minTrainDays   = 30
	minTestDays    = 7
	maxGapDays     = 7
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks and the combined verdict.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// FailedNames returns the names of the failing checks, in order.
func (r *SufficiencyResult) FailedNames() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Pass {
			names = append(names, c.Name)
		}
	}
	return names
}

// CheckSufficiency validates the daily series against the training
// prerequisites for the given cutoff. It never errors: a degenerate series
// simply fails its checks.
func CheckSufficiency(records []*domain.DailyRecord, cutoff time.Time) *SufficiencyResult {
	dates := make([]time.Time, len(records))
	for i, r := range records {
		d := r.Date.UTC()
		dates[i] = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	result := &SufficiencyResult{AllPass: true}
	add := func(c SufficiencyCheck) {
		result.Checks = append(result.Checks, c)
		if !c.Pass {
			result.AllPass = false
		}
	}

	add(SufficiencyCheck{
		Name:      "History length",
		Threshold: fmt.Sprintf(">= %d days", minHistoryDays),
		Actual:    fmt.Sprintf("%d days", len(dates)),
		Pass:      len(dates) >= minHistoryDays,
	})

	duplicates := 0
	for i := 1; i < len(dates); i++ {
		if dates[i].Equal(dates[i-1]) {
			duplicates++
		}
	}
	add(SufficiencyCheck{
		Name:      "Duplicate dates",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", duplicates),
		Pass:      duplicates == 0,
	})

	maxGap := 0
	for i := 1; i < len(dates); i++ {
		gap := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if gap > maxGap {
			maxGap = gap
		}
	}
	add(SufficiencyCheck{
		Name:      "Largest date gap",
		Threshold: fmt.Sprintf("<= %d days", maxGapDays),
		Actual:    fmt.Sprintf("%d days", maxGap),
		Pass:      maxGap <= maxGapDays,
	})

	cutoff = time.Date(cutoff.UTC().Year(), cutoff.UTC().Month(), cutoff.UTC().Day(), 0, 0, 0, 0, time.UTC)
	trainDays := 0
	testDays := 0
	for _, d := range dates {
		if !d.After(cutoff) {
			trainDays++
		}
		if !d.Before(cutoff) {
			testDays++
		}
	}
	add(SufficiencyCheck{
		Name:      "Training window",
		Threshold: fmt.Sprintf(">= %d days", minTrainDays),
		Actual:    fmt.Sprintf("%d days", trainDays),
		Pass:      trainDays >= minTrainDays,
	})
	add(SufficiencyCheck{
		Name:      "Test window",
		Threshold: fmt.Sprintf(">= %d days", minTestDays),
		Actual:    fmt.Sprintf("%d days", testDays),
		Pass:      testDays >= minTestDays,
	})

	withOil := 0
	for _, r := range records {
		if r.OilPrice != nil {
			withOil++
		}
	}
	oilPct := 0.0
	if len(records) > 0 {
		oilPct = float64(withOil) / float64(len(records)) * 100
	}
	add(SufficiencyCheck{
		Name:      "Oil price coverage",
		Threshold: ">= 50%",
		Actual:    fmt.Sprintf("%.1f%%", oilPct),
		Pass:      oilPct >= 50,
	})

	return result
}
