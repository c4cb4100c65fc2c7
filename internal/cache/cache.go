// Package cache is a small TTL wrapper over an LRU map, used for derived
// read views only (poll list, poll detail). Tallies and anything else a
// consistency check depends on are never cached: every mutation invalidates
// the affected keys, and the TTL bounds staleness if an invalidation is
// missed.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      any
	expiresAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, item]
	ttl time.Duration
}

// New creates a cache holding at most size entries, each living for ttl.
func New(size int, ttl time.Duration) (*Cache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{lru: l, ttl: ttl}, nil
}

// Set stores data under key with the cache's TTL.
func (c *Cache) Set(key string, data any) {
	c.lru.Add(key, item{data: data, expiresAt: time.Now().Add(c.ttl)})
}

// Get returns the value under key, or nil if absent or expired.
func (c *Cache) Get(key string) any {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(v.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return v.data
}

// Delete drops key.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry. Used when a mutation touches an unbounded set
// of keys, like the paginated poll list.
func (c *Cache) Purge() {
	c.lru.Purge()
}
