// Package runhash computes deterministic content hashes for pipeline inputs
// and configurations. Cache keys are derived from these hashes so
// invalidation is auditable: same inputs and config, same key.
package runhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/model"
)

// DailySeries hashes the canonical daily series content:
// SHA256 over date|sales|promo|oil|holiday per row, rows in input order.
// Returns a hex-encoded hash (64 characters).
func DailySeries(records []*domain.DailyRecord) string {
	h := sha256.New()
	for _, r := range records {
		oil := "null"
		if r.OilPrice != nil {
			oil = fmt.Sprintf("%.9f", *r.OilPrice)
		}
		fmt.Fprintf(h, "%s|%.9f|%d|%s|%t\n",
			r.Date.Format("2006-01-02"), r.Sales, r.PromoCount, oil, r.IsHoliday)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// TrainingRun hashes the full identity of a training run: the data hash, the
// chronological cutoff and every hyperparameter. Any change produces a new
// key, so stale cached models cannot be served.
func TrainingRun(dataHash, cutoff string, p model.Params) string {
	data := fmt.Sprintf("%s|%s|%d|%.9f|%d|%.9f|%.9f|%d|%d",
		dataHash, cutoff,
		p.NumTrees, p.LearningRate, p.MaxDepth,
		p.Subsample, p.ColSample, p.MinSamplesLeaf, p.Seed,
	)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Scenario hashes a scenario run identity: the training-run hash plus the
// perturbation parameters.
func Scenario(trainHash string, spec domain.ScenarioSpec) string {
	data := fmt.Sprintf("%s|%.9f|%.9f|%d",
		trainHash, spec.PromoChangePct, spec.OilChangePct, spec.HorizonDays)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
