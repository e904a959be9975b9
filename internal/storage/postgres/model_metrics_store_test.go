package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-lab/internal/domain"
)

func TestModelMetricsStore_InsertAndGetByModel(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelMetricsStore(pool)

	base := time.Date(2017, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := []*domain.ModelMetricsRecord{
		{
			ModelID: domain.ModelGBT,
			Metrics: domain.MetricSet{
				MAPE: 8.1, MAE: 12.5, RMSE: 18.2, R2: 0.91,
				MeanActual: 200.0, MeanPredicted: 198.5, BiasPct: 0.75,
			},
			TestDate:  day(t, "2017-07-15"),
			CreatedAt: base,
		},
		{
			ModelID:   domain.ModelGBT,
			Metrics:   domain.MetricSet{MAPE: 7.9},
			TestDate:  day(t, "2017-07-15"),
			CreatedAt: base.Add(24 * time.Hour),
		},
		{
			ModelID:   domain.ModelBaseline,
			Metrics:   domain.MetricSet{MAPE: 14.2},
			TestDate:  day(t, "2017-07-15"),
			CreatedAt: base,
		},
	}
	for _, r := range rows {
		require.NoError(t, store.Insert(ctx, r))
	}

	retrieved, err := store.GetByModel(ctx, domain.ModelGBT)
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	// created_at ascending
	assert.InDelta(t, 8.1, retrieved[0].Metrics.MAPE, 0.0001)
	assert.InDelta(t, 7.9, retrieved[1].Metrics.MAPE, 0.0001)
	assert.InDelta(t, 0.91, retrieved[0].Metrics.R2, 0.0001)
	assert.Equal(t, day(t, "2017-07-15"), retrieved[0].TestDate)
}

func TestModelMetricsStore_AppendOnlyHistory(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelMetricsStore(pool)

	// Repeated inserts for the same model must all survive.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, &domain.ModelMetricsRecord{
			ModelID:   domain.ModelGBT,
			TestDate:  day(t, "2017-07-15"),
			CreatedAt: time.Date(2017, 8, 1+i, 0, 0, 0, 0, time.UTC),
		}))
	}

	retrieved, err := store.GetByModel(ctx, domain.ModelGBT)
	require.NoError(t, err)
	assert.Len(t, retrieved, 3)
}

func TestModelMetricsStore_GetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelMetricsStore(pool)

	base := time.Date(2017, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := []*domain.ModelMetricsRecord{
		{ModelID: domain.ModelGBT, Metrics: domain.MetricSet{MAPE: 8.1}, TestDate: day(t, "2017-07-15"), CreatedAt: base},
		{ModelID: domain.ModelGBT, Metrics: domain.MetricSet{MAPE: 7.9}, TestDate: day(t, "2017-07-15"), CreatedAt: base.Add(24 * time.Hour)},
		{ModelID: domain.ModelBaseline, Metrics: domain.MetricSet{MAPE: 14.2}, TestDate: day(t, "2017-07-15"), CreatedAt: base},
	}
	for _, r := range rows {
		require.NoError(t, store.Insert(ctx, r))
	}

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	byModel := make(map[string]*domain.ModelMetricsRecord)
	for _, m := range latest {
		byModel[m.ModelID] = m
	}
	require.Contains(t, byModel, domain.ModelGBT)
	assert.InDelta(t, 7.9, byModel[domain.ModelGBT].Metrics.MAPE, 0.0001)
	assert.InDelta(t, 14.2, byModel[domain.ModelBaseline].Metrics.MAPE, 0.0001)
}
