// Package cache provides a small in-memory cache for suggestion responses.
package cache

import (
	"strings"
	"sync"
	"time"
)

const defaultMaxEntries = 1024

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a mutex-guarded TTL cache. Expired entries are swept when the
// cache is full rather than by a background goroutine.
type Memory struct {
	mu         sync.RWMutex
	data       map[string]entry
	maxEntries int
}

// NewMemory creates a cache bounded to maxEntries; values at or below zero
// select the default bound.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
	}
}

// Get returns the cached value for key, or false when absent or expired.
func (c *Memory) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl stores nothing.
func (c *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.maxEntries {
		c.sweepLocked()
	}
	if len(c.data) >= c.maxEntries {
		c.evictOldestLocked()
	}

	c.data[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Purge drops every entry.
func (c *Memory) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry)
}

// Len reports the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Memory) sweepLocked() {
	now := time.Now()
	for key, e := range c.data {
		if now.After(e.expiresAt) {
			delete(c.data, key)
		}
	}
}

func (c *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	for key, e := range c.data {
		if oldestKey == "" || e.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

// Key joins components into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
