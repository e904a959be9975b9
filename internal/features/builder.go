package features

import (
	"fmt"
	"math"
	"sort"
	"time"

	"revenue-lab/internal/domain"
)

// Lookback windows for lag and rolling features, in days.
const (
	lagDay   = 1
	lagWeek  = 7
	lagMonth = 30
	lagYear  = 365
)

// Aggregate collapses raw transaction-level sales into the canonical
// one-row-per-date series: total sales per date, promotion count per date
// (sum of per-item promotion indicators), left-joined oil price and holiday
// membership.
//
// Oil prices are carried forward from the last known value, then backward for
// any leading gap. A date's price stays nil only when the oil series is empty.
func Aggregate(
	sales []*domain.SalesRecord,
	oil []*domain.OilPricePoint,
	holidays []*domain.Holiday,
) ([]*domain.DailyRecord, error) {
	if len(sales) == 0 {
		return nil, fmt.Errorf("%w: no sales records", domain.ErrData)
	}

	type daily struct {
		sales float64
		promo int
	}
	byDate := make(map[time.Time]*daily)
	for _, r := range sales {
		d := truncateDay(r.Date)
		agg, ok := byDate[d]
		if !ok {
			agg = &daily{}
			byDate[d] = agg
		}
		agg.sales += r.Sales
		agg.promo += r.OnPromotion
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	oilByDate := make(map[time.Time]float64, len(oil))
	for _, p := range oil {
		if p.Price != nil {
			oilByDate[truncateDay(p.Date)] = *p.Price
		}
	}

	holidaySet := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[truncateDay(h.Date)] = struct{}{}
	}

	records := make([]*domain.DailyRecord, len(dates))
	for i, d := range dates {
		rec := &domain.DailyRecord{
			Date:       d,
			Sales:      byDate[d].sales,
			PromoCount: byDate[d].promo,
		}
		if price, ok := oilByDate[d]; ok {
			p := price
			rec.OilPrice = &p
		}
		if _, ok := holidaySet[d]; ok {
			rec.IsHoliday = true
		}
		records[i] = rec
	}

	fillOilPrices(records)
	return records, nil
}

// fillOilPrices carries the last known price forward, then backward for any
// leading gap. Records must be in date order.
func fillOilPrices(records []*domain.DailyRecord) {
	var last *float64
	for _, r := range records {
		if r.OilPrice != nil {
			last = r.OilPrice
		} else if last != nil {
			p := *last
			r.OilPrice = &p
		}
	}
	var next *float64
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].OilPrice != nil {
			next = records[i].OilPrice
		} else if next != nil {
			p := *next
			records[i].OilPrice = &p
		}
	}
}

// BuildTable derives the full feature table from the canonical daily series.
// Records are sorted by date internally; exactly one record per date is
// required.
//
// Leakage rule: lag and rolling features use only rows strictly preceding the
// target row. Rolling windows are the k rows before the row, complete windows
// only; incomplete lookback yields NaN and is resolved by the final
// backward-fill -> forward-fill -> zero-fill imputation pass, so early-history
// rows keep a defined value instead of being dropped.
func BuildTable(records []*domain.DailyRecord) (*domain.FeatureTable, error) {
	n := len(records)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty daily series", domain.ErrData)
	}

	sorted := make([]*domain.DailyRecord, n)
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i := 1; i < n; i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s", domain.ErrData, sorted[i].Date.Format("2006-01-02"))
		}
	}

	t := domain.NewFeatureTable(n)
	salesSeries := make([]float64, n)
	for i, r := range sorted {
		t.Dates[i] = r.Date
		t.Sales[i] = r.Sales
		salesSeries[i] = r.Sales

		t.Columns[domain.ColPromoCount][i] = float64(r.PromoCount)
		if r.OilPrice != nil {
			t.Columns[domain.ColOilPrice][i] = *r.OilPrice
		} else {
			t.Columns[domain.ColOilPrice][i] = math.NaN()
		}
		t.Columns[domain.ColIsHoliday][i] = boolToFloat(r.IsHoliday)

		setCalendarFeatures(t, i, r.Date)
	}

	setLagColumn(t.Columns[domain.ColLag1], salesSeries, lagDay)
	setLagColumn(t.Columns[domain.ColLag7], salesSeries, lagWeek)
	setLagColumn(t.Columns[domain.ColLag30], salesSeries, lagMonth)

	setRollingColumns(t.Columns[domain.ColRollMean7], t.Columns[domain.ColRollStd7], salesSeries, lagWeek)
	setRollingColumns(t.Columns[domain.ColRollMean30], t.Columns[domain.ColRollStd30], salesSeries, lagMonth)

	yoy := t.Columns[domain.ColYoYGrowth]
	for i := range salesSeries {
		if i < lagYear {
			yoy[i] = math.NaN()
			continue
		}
		prev := salesSeries[i-lagYear]
		yoy[i] = (salesSeries[i] - prev) / (prev + 1)
	}

	Impute(t)
	return t, nil
}

// Build is the full feature-engineering contract: raw records in, imputed
// feature table out.
func Build(
	sales []*domain.SalesRecord,
	oil []*domain.OilPricePoint,
	holidays []*domain.Holiday,
) (*domain.FeatureTable, error) {
	records, err := Aggregate(sales, oil, holidays)
	if err != nil {
		return nil, err
	}
	return BuildTable(records)
}

// setLagColumn writes sales shifted by lag rows; leading rows get NaN.
func setLagColumn(dst, sales []float64, lag int) {
	for i := range dst {
		if i < lag {
			dst[i] = math.NaN()
		} else {
			dst[i] = sales[i-lag]
		}
	}
}

// setRollingColumns writes mean and sample std over the window of k rows
// strictly preceding each row. Complete windows only.
func setRollingColumns(meanDst, stdDst, sales []float64, k int) {
	for i := range meanDst {
		if i < k {
			meanDst[i] = math.NaN()
			stdDst[i] = math.NaN()
			continue
		}
		window := sales[i-k : i]
		sum := 0.0
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(k)
		meanDst[i] = mean

		if k < 2 {
			stdDst[i] = math.NaN()
			continue
		}
		sumSq := 0.0
		for _, v := range window {
			diff := v - mean
			sumSq += diff * diff
		}
		stdDst[i] = math.Sqrt(sumSq / float64(k-1))
	}
}

// setCalendarFeatures writes the deterministic date-derived columns for row i.
// Day-of-week is Monday=0 .. Sunday=6; weekend is Saturday or Sunday.
func setCalendarFeatures(t *domain.FeatureTable, i int, d time.Time) {
	dow := (int(d.Weekday()) + 6) % 7
	t.Columns[domain.ColYear][i] = float64(d.Year())
	t.Columns[domain.ColMonth][i] = float64(d.Month())
	t.Columns[domain.ColDayOfWeek][i] = float64(dow)
	t.Columns[domain.ColDayOfMonth][i] = float64(d.Day())
	t.Columns[domain.ColQuarter][i] = float64((int(d.Month())-1)/3 + 1)
	t.Columns[domain.ColIsWeekend][i] = boolToFloat(dow >= 5)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// truncateDay normalizes a timestamp to UTC midnight, the table's row key.
func truncateDay(d time.Time) time.Time {
	u := d.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
