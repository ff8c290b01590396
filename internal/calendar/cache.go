package calendar

import (
	"context"
	"sync"
	"time"
)

// Entry é o valor guardado por dia.
type Entry struct {
	Events    []Event   `json:"events"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// ======================================================
// MEMORY
// ======================================================

const DefaultCapacity = 512

type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]Entry
	capacity int
}

func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		entries:  make(map[string]Entry),
		capacity: capacity,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, entry Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	return nil
}

func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries), nil
}

func (c *MemoryCache) Capacity() int {
	return c.capacity
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.FetchedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.FetchedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
