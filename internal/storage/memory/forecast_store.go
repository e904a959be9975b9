package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/storage"
)

// ForecastStore is an in-memory implementation of storage.ForecastStore.
type ForecastStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ForecastResult // keyed by (date, model_id, scenario_id)
}

// NewForecastStore creates a new in-memory forecast store.
func NewForecastStore() *ForecastStore {
	return &ForecastStore{
		data: make(map[string]*domain.ForecastResult),
	}
}

// forecastKey generates a unique key for a forecast row.
func forecastKey(date time.Time, modelID, scenarioID string) string {
	return fmt.Sprintf("%s|%s|%s", date.UTC().Format("2006-01-02"), modelID, scenarioID)
}

// UpsertBulk writes forecasts, overwriting existing (date, model, scenario) rows.
func (s *ForecastStore) UpsertBulk(_ context.Context, forecasts []*domain.ForecastResult) error {
	if len(forecasts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range forecasts {
		if f == nil || f.ModelID == "" || f.ScenarioID == "" || f.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		fCopy := *f
		s.data[forecastKey(f.Date, f.ModelID, f.ScenarioID)] = &fCopy
	}

	return nil
}

// GetByModel retrieves all baseline-scenario forecasts for a model, ordered by date ASC.
func (s *ForecastStore) GetByModel(_ context.Context, modelID string) ([]*domain.ForecastResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ForecastResult
	for _, f := range s.data {
		if f.ModelID == modelID && f.ScenarioID == domain.ScenarioBaseline {
			fCopy := *f
			result = append(result, &fCopy)
		}
	}

	sortForecasts(result)
	return result, nil
}

// GetByScenario retrieves all forecasts for a scenario, ordered by date ASC.
func (s *ForecastStore) GetByScenario(_ context.Context, scenarioID string) ([]*domain.ForecastResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ForecastResult
	for _, f := range s.data {
		if f.ScenarioID == scenarioID {
			fCopy := *f
			result = append(result, &fCopy)
		}
	}

	sortForecasts(result)
	return result, nil
}

// GetByDateRange retrieves forecasts for a model/scenario pair within [start, end] (inclusive).
func (s *ForecastStore) GetByDateRange(_ context.Context, modelID, scenarioID string, start, end time.Time) ([]*domain.ForecastResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ForecastResult
	for _, f := range s.data {
		if f.ModelID == modelID && f.ScenarioID == scenarioID &&
			!f.Date.Before(start) && !f.Date.After(end) {
			fCopy := *f
			result = append(result, &fCopy)
		}
	}

	sortForecasts(result)
	return result, nil
}

func sortForecasts(forecasts []*domain.ForecastResult) {
	sort.Slice(forecasts, func(i, j int) bool {
		if !forecasts[i].Date.Equal(forecasts[j].Date) {
			return forecasts[i].Date.Before(forecasts[j].Date)
		}
		if forecasts[i].ModelID != forecasts[j].ModelID {
			return forecasts[i].ModelID < forecasts[j].ModelID
		}
		return forecasts[i].ScenarioID < forecasts[j].ScenarioID
	})
}

var _ storage.ForecastStore = (*ForecastStore)(nil)
