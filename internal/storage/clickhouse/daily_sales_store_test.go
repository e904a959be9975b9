package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d.UTC()
}

func TestDailySalesStore_UpsertAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailySalesStore(conn)

	records := []*domain.DailyRecord{
		{Date: day(t, "2017-01-02"), Sales: 200.5, PromoCount: 3, OilPrice: ptr(52.3)},
		{Date: day(t, "2017-01-01"), Sales: 100.0, PromoCount: 1, IsHoliday: true},
	}

	require.NoError(t, store.UpsertBulk(ctx, records))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	assert.Equal(t, day(t, "2017-01-01"), retrieved[0].Date)
	assert.True(t, retrieved[0].IsHoliday)
	assert.Nil(t, retrieved[0].OilPrice)

	assert.Equal(t, 3, retrieved[1].PromoCount)
	require.NotNil(t, retrieved[1].OilPrice)
	assert.InDelta(t, 52.3, *retrieved[1].OilPrice, 0.0001)
}

func TestDailySalesStore_UpsertOverwrites(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailySalesStore(conn)

	require.NoError(t, store.UpsertBulk(ctx, []*domain.DailyRecord{
		{Date: day(t, "2017-01-01"), Sales: 100.0},
	}))

	// ReplacingMergeTree needs distinct versions; give the replacement a
	// later inserted_at tick.
	time.Sleep(1100 * time.Millisecond)

	require.NoError(t, store.UpsertBulk(ctx, []*domain.DailyRecord{
		{Date: day(t, "2017-01-01"), Sales: 250.0, PromoCount: 4},
	}))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.InDelta(t, 250.0, retrieved[0].Sales, 0.0001)
	assert.Equal(t, 4, retrieved[0].PromoCount)
}

func TestDailySalesStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailySalesStore(conn)

	records := []*domain.DailyRecord{
		{Date: day(t, "2017-01-01"), Sales: 100},
		{Date: day(t, "2017-01-02"), Sales: 200},
		{Date: day(t, "2017-01-03"), Sales: 300},
	}
	require.NoError(t, store.UpsertBulk(ctx, records))

	retrieved, err := store.GetByDateRange(ctx, day(t, "2017-01-02"), day(t, "2017-01-03"))
	require.NoError(t, err)
	require.Len(t, retrieved, 2)
	assert.InDelta(t, 200.0, retrieved[0].Sales, 0.0001)
	assert.InDelta(t, 300.0, retrieved[1].Sales, 0.0001)
}

func TestDailySalesStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailySalesStore(conn)

	err := store.UpsertBulk(context.Background(), []*domain.DailyRecord{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
