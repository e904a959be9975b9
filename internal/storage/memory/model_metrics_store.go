package memory

import (
	"context"
	"sort"
	"sync"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ModelMetricsStore is an in-memory implementation of storage.ModelMetricsStore.
type ModelMetricsStore struct {
	mu   sync.RWMutex
	data []*domain.ModelMetricsRecord // append-only history
}

// NewModelMetricsStore creates a new in-memory model metrics store.
func NewModelMetricsStore() *ModelMetricsStore {
	return &ModelMetricsStore{}
}

// Insert appends a metrics row.
func (s *ModelMetricsStore) Insert(_ context.Context, m *domain.ModelMetricsRecord) error {
	if m == nil || m.ModelID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mCopy := *m
	s.data = append(s.data, &mCopy)
	return nil
}

// GetByModel retrieves all metric rows for a model, ordered by created_at ASC.
func (s *ModelMetricsStore) GetByModel(_ context.Context, modelID string) ([]*domain.ModelMetricsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ModelMetricsRecord
	for _, m := range s.data {
		if m.ModelID == modelID {
			mCopy := *m
			result = append(result, &mCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// GetLatest retrieves the most recent metrics row per model.
func (s *ModelMetricsStore) GetLatest(_ context.Context) ([]*domain.ModelMetricsRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.ModelMetricsRecord)
	for _, m := range s.data {
		cur, exists := latest[m.ModelID]
		if !exists || !m.CreatedAt.Before(cur.CreatedAt) {
			latest[m.ModelID] = m
		}
	}

	result := make([]*domain.ModelMetricsRecord, 0, len(latest))
	for _, m := range latest {
		mCopy := *m
		result = append(result, &mCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ModelID < result[j].ModelID
	})

	return result, nil
}

var _ storage.ModelMetricsStore = (*ModelMetricsStore)(nil)
