// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit provides a fixed-window per-user message limiter. The
// first overage in a window produces exactly one cooldown notice; every
// later overage in the same window is dropped silently so the bot never
// amplifies spam with its own replies.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// userWindow tracks one user's counter inside the current window.
type userWindow struct {
	count       int
	windowReset time.Time
	warned      bool
}

// Verdict is the limiter's decision for one inbound message.
type Verdict struct {
	// Allow means the message may proceed through the pipeline.
	Allow bool
	// Notice is non-empty exactly once per window, on the first overage.
	Notice string
	// RetryAfter is how long until the window resets (set on overage).
	RetryAfter time.Duration
}

// Limiter is a fixed-window counter keyed by user ID. Safe for concurrent
// use; state is process-lifetime only.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	users   map[string]*userWindow
	dropped int64

	now func() time.Time
}

// Stats reports diagnostic counters for the management API.
type Stats struct {
	TrackedUsers int   `json:"tracked_users"`
	Dropped      int64 `json:"dropped"`
}

// NewLimiter creates a Limiter allowing max messages per window per user.
func NewLimiter(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 5
	}
	return &Limiter{
		window: window,
		max:    max,
		users:  make(map[string]*userWindow),
		now:    time.Now,
	}
}

// Check records one inbound message for userID and returns the verdict.
func (l *Limiter) Check(userID string) Verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	uw, ok := l.users[userID]
	if !ok || now.After(uw.windowReset) {
		l.users[userID] = &userWindow{count: 1, windowReset: now.Add(l.window)}
		return Verdict{Allow: true}
	}

	uw.count++
	if uw.count <= l.max {
		return Verdict{Allow: true}
	}

	remaining := uw.windowReset.Sub(now)
	if !uw.warned {
		uw.warned = true
		log.WithFields(log.Fields{
			"user":  userID,
			"count": uw.count,
		}).Info("Rate limit exceeded, sending cooldown notice")
		return Verdict{
			Allow:      false,
			Notice:     fmt.Sprintf("Easy there! You're sending messages too fast. Give me %d seconds to catch up. ⏳", int(remaining.Seconds())+1),
			RetryAfter: remaining,
		}
	}

	l.dropped++
	return Verdict{Allow: false, RetryAfter: remaining}
}

// Sweep removes expired windows. Run on a fixed interval by the maintenance
// service.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for id, uw := range l.users {
		if now.After(uw.windowReset) {
			delete(l.users, id)
			removed++
		}
	}
	if removed > 0 {
		log.WithField("removed", removed).Debug("Rate limiter sweep complete")
	}
	return removed
}

// GetStats returns diagnostic counters.
func (l *Limiter) GetStats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{TrackedUsers: len(l.users), Dropped: l.dropped}
}
