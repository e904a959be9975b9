package domain

import "time"

// SalesRecord is one raw transaction-level sales row as delivered by the
// upstream dataset: per store, per product family, per day.
type SalesRecord struct {
	Date        time.Time
	StoreID     string
	Family      string // product family
	Sales       float64
	OnPromotion int // number of items on promotion for this row
}

// OilPricePoint is one observation of the daily commodity price series.
// Price is nil when the source has a gap for that date.
type OilPricePoint struct {
	Date  time.Time
	Price *float64
}

// Holiday is one holiday calendar entry. The engine only uses date
// membership; metadata is carried through for reporting.
type Holiday struct {
	Date time.Time
	Name string
	Kind string
}

// DailyRecord is the canonical one-row-per-date series the feature engine
// consumes. Exactly one record per date; chronological order matters.
type DailyRecord struct {
	Date       time.Time
	Sales      float64
	PromoCount int      // sum of per-item promotion indicators for the day
	OilPrice   *float64 // nil when no price is known for the date
	IsHoliday  bool
}
