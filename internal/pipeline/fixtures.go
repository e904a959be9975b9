package pipeline

import (
	"context"
	"math"
	"math/rand"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// fixtureSeed makes the synthetic series reproducible across runs.
const fixtureSeed = 7

// FixtureRecords generates a deterministic two-year synthetic daily series
// with the structure the model is built to pick up: an upward trend, weekend
// and payday seasonality, promotion lifts, holiday spikes and a slowly
// drifting oil price.
func FixtureRecords() []*domain.DailyRecord {
	const days = 730
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(fixtureSeed))

	holidays := map[string]bool{
		"01-01": true,
		"05-01": true,
		"11-02": true,
		"12-25": true,
	}

	records := make([]*domain.DailyRecord, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)

		sales := 1000.0 + 0.5*float64(i)
		switch date.Weekday() {
		case time.Saturday, time.Sunday:
			sales += 200
		case time.Friday:
			sales += 80
		}
		if d := date.Day(); d == 1 || d == 15 {
			sales += 120
		}

		promo := 0
		if i%5 == 0 {
			promo = 10 + rng.Intn(20)
			sales += 15 * float64(promo)
		}

		isHoliday := holidays[date.Format("01-02")]
		if isHoliday {
			sales += 300
		}

		sales += rng.NormFloat64() * 50
		if sales < 0 {
			sales = 0
		}

		oil := 50 + 10*math.Sin(float64(i)/30) + rng.NormFloat64()*2

		records[i] = &domain.DailyRecord{
			Date:       date,
			Sales:      sales,
			PromoCount: promo,
			OilPrice:   &oil,
			IsHoliday:  isHoliday,
		}
	}
	return records
}

// LoadFixtures populates the daily sales store with the synthetic series.
func LoadFixtures(ctx context.Context, store storage.DailySalesStore) error {
	return store.UpsertBulk(ctx, FixtureRecords())
}
