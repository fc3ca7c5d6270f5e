package dashboard

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache holds recently built dashboards keyed by id. A zero-capacity cache is
// valid and stores nothing.
type Cache struct {
	lru *lru.Cache[string, *Result]
}

// NewCache returns an LRU cache holding up to size dashboards; size <= 0
// disables caching.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return &Cache{}, nil
	}
	c, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{lru: c}, nil
}

// Get returns a copy of the cached result for id.
func (c *Cache) Get(id string) (*Result, bool) {
	if c == nil || c.lru == nil {
		return nil, false
	}
	r, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Add stores a copy of r under its dashboard id.
func (c *Cache) Add(r *Result) {
	if c == nil || c.lru == nil || r == nil || r.DashboardID == "" {
		return
	}
	c.lru.Add(r.DashboardID, r.clone())
}

// Remove drops id from the cache.
func (c *Cache) Remove(id string) {
	if c == nil || c.lru == nil {
		return
	}
	c.lru.Remove(id)
}

// Len reports the number of cached dashboards.
func (c *Cache) Len() int {
	if c == nil || c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
