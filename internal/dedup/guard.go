// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dedup suppresses repeat submissions. A message is a duplicate when
// the same (user, conversation) pair submits text whose normalized hash
// matches the previous submission inside a short window. Duplicates produce
// no reply at all; silence is the intended spam-suppression behavior.
package dedup

import (
	"container/list"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pepperlabs/pepperbot/internal/textutil"
)

// record is the most recent submission for one (user, conversation) key.
type record struct {
	key       string
	queryHash uint64
	timestamp time.Time
	element   *list.Element
}

// Guard is a bounded per-conversation duplicate detector. Safe for
// concurrent use; all state is process-lifetime only.
type Guard struct {
	mu      sync.Mutex
	window  time.Duration
	maxSize int
	records map[string]*record
	order   *list.List // insertion order, for eviction when full

	suppressed int64

	now func() time.Time
}

// GuardStats reports diagnostic counters for the management API.
type GuardStats struct {
	Size       int   `json:"size"`
	MaxSize    int   `json:"max_size"`
	Suppressed int64 `json:"suppressed"`
}

// NewGuard creates a Guard. window is how long a repeated hash counts as a
// duplicate; maxSize bounds the record store.
func NewGuard(window time.Duration, maxSize int) *Guard {
	if window <= 0 {
		window = 30 * time.Second
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Guard{
		window:  window,
		maxSize: maxSize,
		records: make(map[string]*record),
		order:   list.New(),
		now:     time.Now,
	}
}

// IsDuplicate reports whether text is a repeat submission for the given
// user and conversation. On a non-duplicate it records the new hash, so the
// call is check-and-set, not a pure read.
func (g *Guard) IsDuplicate(userID, conversationID, text string) bool {
	hash := textutil.Hash(text)
	key := userID + ":" + conversationID

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if rec, ok := g.records[key]; ok {
		if rec.queryHash == hash && now.Sub(rec.timestamp) < g.window {
			g.suppressed++
			log.WithFields(log.Fields{
				"user":         userID,
				"conversation": conversationID,
			}).Debug("Duplicate message suppressed")
			return true
		}
		// The record updates in place but keeps its list position: eviction
		// is by original insertion order, not by last activity.
		rec.queryHash = hash
		rec.timestamp = now
		return false
	}

	if len(g.records) >= g.maxSize {
		g.evictOldest()
	}

	rec := &record{key: key, queryHash: hash, timestamp: now}
	rec.element = g.order.PushBack(rec)
	g.records[key] = rec
	return false
}

// evictOldest removes the oldest-inserted record. Caller holds g.mu.
func (g *Guard) evictOldest() {
	front := g.order.Front()
	if front == nil {
		return
	}
	rec := front.Value.(*record)
	g.order.Remove(front)
	delete(g.records, rec.key)
}

// Sweep removes records older than the window. Called on a fixed interval
// by the maintenance service so memory stays bounded under bursty traffic.
func (g *Guard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for e := g.order.Front(); e != nil; {
		next := e.Next()
		rec := e.Value.(*record)
		if now.Sub(rec.timestamp) >= g.window {
			g.order.Remove(e)
			delete(g.records, rec.key)
			removed++
		}
		e = next
	}
	if removed > 0 {
		log.WithField("removed", removed).Debug("Duplicate guard sweep complete")
	}
	return removed
}

// Stats returns diagnostic counters.
func (g *Guard) Stats() GuardStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GuardStats{
		Size:       len(g.records),
		MaxSize:    g.maxSize,
		Suppressed: g.suppressed,
	}
}
