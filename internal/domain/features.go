package domain

import (
	"fmt"
	"math"
	"time"
)

// Feature column names. The model input contract is FeatureColumns; adding or
// removing a column there is a breaking change that requires retraining.
const (
	ColOilPrice   = "oil_price"
	ColPromoCount = "promo_count"
	ColIsHoliday  = "is_holiday"
	ColIsWeekend  = "is_weekend"
	ColYear       = "year"
	ColMonth      = "month"
	ColDayOfWeek  = "day_of_week"
	ColDayOfMonth = "day_of_month"
	ColQuarter    = "quarter"
	ColLag1       = "lag_1"
	ColLag7       = "lag_7"
	ColLag30      = "lag_30"
	ColRollMean7  = "roll_mean_7"
	ColRollMean30 = "roll_mean_30"
	ColRollStd7   = "roll_std_7"
	ColRollStd30  = "roll_std_30"

	// ColYoYGrowth is a diagnostic column: computed and stored alongside the
	// features but not part of the model input contract.
	ColYoYGrowth = "yoy_growth"
)

// FeatureColumns is the fixed model input contract, in order.
var FeatureColumns = []string{
	ColOilPrice, ColPromoCount, ColIsHoliday, ColIsWeekend,
	ColYear, ColMonth, ColDayOfWeek, ColQuarter,
	ColLag1, ColLag7, ColLag30,
	ColRollMean7, ColRollMean30,
	ColRollStd7, ColRollStd30,
}

// ExtraColumns are computed alongside the model inputs for diagnostics but
// are not fed to the model.
var ExtraColumns = []string{ColDayOfMonth, ColYoYGrowth}

// FeatureTable is the canonical time-indexed feature table: one row per date,
// dates strictly ascending, columnar storage. Missing values are NaN until
// imputation is applied; the model contract requires a fully defined table.
type FeatureTable struct {
	Dates   []time.Time
	Sales   []float64 // target series, parallel to Dates
	Columns map[string][]float64
}

// NewFeatureTable allocates a table for n rows with all contract and extra
// columns present and zeroed.
func NewFeatureTable(n int) *FeatureTable {
	t := &FeatureTable{
		Dates:   make([]time.Time, n),
		Sales:   make([]float64, n),
		Columns: make(map[string][]float64, len(FeatureColumns)+len(ExtraColumns)),
	}
	for _, name := range FeatureColumns {
		t.Columns[name] = make([]float64, n)
	}
	for _, name := range ExtraColumns {
		t.Columns[name] = make([]float64, n)
	}
	return t
}

// Len returns the number of rows.
func (t *FeatureTable) Len() int {
	return len(t.Dates)
}

// Column returns the named column or an error wrapping ErrData.
func (t *FeatureTable) Column(name string) ([]float64, error) {
	col, ok := t.Columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %q", ErrData, name)
	}
	return col, nil
}

// Clone returns a deep copy. Scenario transforms operate on clones so the
// canonical table stays immutable.
func (t *FeatureTable) Clone() *FeatureTable {
	c := &FeatureTable{
		Dates:   append([]time.Time(nil), t.Dates...),
		Sales:   append([]float64(nil), t.Sales...),
		Columns: make(map[string][]float64, len(t.Columns)),
	}
	for name, col := range t.Columns {
		c.Columns[name] = append([]float64(nil), col...)
	}
	return c
}

// Slice returns a deep copy of the row range [from, to).
func (t *FeatureTable) Slice(from, to int) *FeatureTable {
	c := &FeatureTable{
		Dates:   append([]time.Time(nil), t.Dates[from:to]...),
		Sales:   append([]float64(nil), t.Sales[from:to]...),
		Columns: make(map[string][]float64, len(t.Columns)),
	}
	for name, col := range t.Columns {
		c.Columns[name] = append([]float64(nil), col[from:to]...)
	}
	return c
}

// Matrix returns the model input matrix, row-major, columns in FeatureColumns
// order. Returns an error wrapping ErrData if a contract column is missing or
// still contains NaN.
func (t *FeatureTable) Matrix() ([][]float64, error) {
	n := t.Len()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, len(FeatureColumns))
	}
	for j, name := range FeatureColumns {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrData, name, len(col), n)
		}
		for i, v := range col {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%w: column %q has NaN at row %d (impute before use)", ErrData, name, i)
			}
			rows[i][j] = v
		}
	}
	return rows, nil
}
