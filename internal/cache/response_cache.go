// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cache provides the in-memory response cache. Entries are keyed by
// the normalized query text, expire lazily on read via per-entry TTLs, and
// the oldest entry is evicted when the store reaches capacity. Hit counts
// exist for diagnostics only; eviction is strictly age-based.
package cache

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/textutil"
)

// Entry is one cached response.
type Entry struct {
	Response  string
	Timestamp time.Time
	TTL       time.Duration
	Hits      int64
}

// Metrics tracks cache performance statistics.
type Metrics struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
}

// ResponseCache is a TTL key/value store for generated responses. Safe for
// concurrent use.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]*Entry
	maxSize    int
	defaultTTL time.Duration
	metrics    Metrics

	now func() time.Time
}

// New creates a ResponseCache holding at most maxSize entries; defaultTTL
// applies when Set is called with ttl <= 0.
func New(maxSize int, defaultTTL time.Duration) *ResponseCache {
	if maxSize <= 0 {
		maxSize = 500
	}
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &ResponseCache{
		entries:    make(map[string]*Entry),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get looks up the cached response for query. An entry past its TTL is
// deleted and reported as a miss.
func (c *ResponseCache) Get(query string) (string, bool) {
	key := textutil.Normalize(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.metrics.Misses++
		return "", false
	}
	if c.now().Sub(entry.Timestamp) >= entry.TTL {
		delete(c.entries, key)
		c.metrics.Expired++
		c.metrics.Misses++
		return "", false
	}

	entry.Hits++
	c.metrics.Hits++
	return entry.Response, true
}

// Set stores response under the normalized form of query. A ttl <= 0 uses
// the cache default. At capacity, the entry with the oldest timestamp is
// evicted first.
func (c *ResponseCache) Set(query, response string, ttl time.Duration) {
	key := textutil.Normalize(query)
	if key == "" || response == "" {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = &Entry{
		Response:  response,
		Timestamp: c.now(),
		TTL:       ttl,
	}
}

// evictOldest removes the entry with the oldest timestamp. Caller holds c.mu.
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.Timestamp.Before(oldest) {
			oldestKey = key
			oldest = entry.Timestamp
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.metrics.Evictions++
		log.WithField("key", oldestKey).Debug("Evicted oldest cache entry")
	}
}

// Delete removes the entry for query, if present. Used when a response
// written optimistically at generation time fails downstream validation.
func (c *ResponseCache) Delete(query string) {
	key := textutil.Normalize(query)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes all expired entries eagerly. Correctness only needs lazy
// expiry; the sweep bounds memory during long idle stretches.
func (c *ResponseCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.Timestamp) >= entry.TTL {
			delete(c.entries, key)
			c.metrics.Expired++
			removed++
		}
	}
	return removed
}

// Clear drops every entry. Metrics counters survive; size is recomputed on
// the next GetStats call.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// GetStats returns a snapshot of the cache metrics.
func (c *ResponseCache) GetStats() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.metrics
	m.Size = len(c.entries)
	m.MaxSize = c.maxSize
	return m
}
