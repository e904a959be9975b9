package memory

import (
	"context"
	"sort"
	"sync"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ScenarioRecord // keyed by scenario_id
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data: make(map[string]*domain.ScenarioRecord),
	}
}

// Upsert writes a scenario result, overwriting an existing scenario_id.
func (s *ScenarioStore) Upsert(_ context.Context, rec *domain.ScenarioRecord) error {
	if rec == nil || rec.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *rec
	s.data[rec.ScenarioID] = &recCopy
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(_ context.Context, scenarioID string) (*domain.ScenarioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[scenarioID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recCopy := *rec
	return &recCopy, nil
}

// GetAll retrieves all scenarios, ordered by created_at ASC.
func (s *ScenarioStore) GetAll(_ context.Context) ([]*domain.ScenarioRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ScenarioRecord, 0, len(s.data))
	for _, rec := range s.data {
		recCopy := *rec
		result = append(result, &recCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ScenarioID < result[j].ScenarioID
	})

	return result, nil
}

var _ storage.ScenarioStore = (*ScenarioStore)(nil)
