// Package cache provides a size-bounded, content-addressed result cache for
// the expensive pipeline stages: feature construction and model training.
// Keys are runhash content hashes, so a hit is correct by construction and
// invalidation never needs explicit bookkeeping.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"revenue-lab/internal/domain"
	"revenue-lab/internal/model"
)

// Results caches feature tables and trained ensembles keyed by content hash.
type Results struct {
	mu     sync.RWMutex
	tables *lru.Cache[string, *domain.FeatureTable]
	models *lru.Cache[string, *model.GBT]
	hits   uint64
	misses uint64
}

// New creates a cache bounded to size entries per kind.
func New(size int) (*Results, error) {
	tables, err := lru.New[string, *domain.FeatureTable](size)
	if err != nil {
		return nil, err
	}
	models, err := lru.New[string, *model.GBT](size)
	if err != nil {
		return nil, err
	}
	return &Results{tables: tables, models: models}, nil
}

// Table returns the cached feature table for a data hash, cloned so callers
// cannot mutate the cached copy.
func (c *Results) Table(key string) (*domain.FeatureTable, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return t.Clone(), true
}

// PutTable stores a feature table under its content hash.
func (c *Results) PutTable(key string, t *domain.FeatureTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables.Add(key, t.Clone())
}

// Model returns the cached trained ensemble for a training-run hash.
// Trained models are immutable, so the cached instance is shared.
func (c *Results) Model(key string) (*model.GBT, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.models.Get(key)
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return m, true
}

// PutModel stores a trained ensemble under its training-run hash.
func (c *Results) PutModel(key string, m *model.GBT) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models.Add(key, m)
}

// Stats reports hit and miss counts.
func (c *Results) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
