package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// DailySalesStore is an in-memory implementation of storage.DailySalesStore.
type DailySalesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DailyRecord // keyed by date (YYYY-MM-DD)
}

// NewDailySalesStore creates a new in-memory daily sales store.
func NewDailySalesStore() *DailySalesStore {
	return &DailySalesStore{
		data: make(map[string]*domain.DailyRecord),
	}
}

func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UpsertBulk writes daily records keyed by date, overwriting existing rows.
func (s *DailySalesStore) UpsertBulk(_ context.Context, records []*domain.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		recCopy := *r
		s.data[dateKey(r.Date)] = &recCopy
	}

	return nil
}

// GetAll retrieves the full series ordered by date ASC.
func (s *DailySalesStore) GetAll(_ context.Context) ([]*domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DailyRecord, 0, len(s.data))
	for _, r := range s.data {
		recCopy := *r
		result = append(result, &recCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

// GetByDateRange retrieves records within [start, end] (inclusive).
func (s *DailySalesStore) GetByDateRange(_ context.Context, start, end time.Time) ([]*domain.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyRecord
	for _, r := range s.data {
		if !r.Date.Before(start) && !r.Date.After(end) {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

var _ storage.DailySalesStore = (*DailySalesStore)(nil)
