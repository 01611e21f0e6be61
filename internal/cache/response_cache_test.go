// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCache_HitOnNormalizedEquivalents(t *testing.T) {
	c := New(100, time.Minute)
	c.Set("What is PEPPER?", "PEPPER is a community token.", 0)

	got, hit := c.Get("  what is pepper ")
	if !hit {
		t.Fatal("expected a hit for a normalized-equal query")
	}
	if got != "PEPPER is a community token." {
		t.Errorf("Get() = %q", got)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(100, time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("q", "r", 10*time.Second)
	if _, hit := c.Get("q"); !hit {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(11 * time.Second)
	if _, hit := c.Get("q"); hit {
		t.Fatal("expected miss after TTL")
	}
	if got := c.GetStats().Size; got != 0 {
		t.Errorf("expired entry still present, size = %d", got)
	}
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := New(3, time.Hour)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("q%d", i), "r", 0)
		current = current.Add(time.Second)
	}
	c.Set("q3", "r", 0)

	if _, hit := c.Get("q0"); hit {
		t.Error("oldest entry q0 should have been evicted")
	}
	for _, q := range []string{"q1", "q2", "q3"} {
		if _, hit := c.Get(q); !hit {
			t.Errorf("entry %s should have survived eviction", q)
		}
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCache_OverwriteDoesNotEvict(t *testing.T) {
	c := New(2, time.Hour)
	c.Set("a", "1", 0)
	c.Set("b", "2", 0)
	c.Set("a", "3", 0)

	if got, _ := c.Get("a"); got != "3" {
		t.Errorf("Get(a) = %q, want overwritten value", got)
	}
	if _, hit := c.Get("b"); !hit {
		t.Error("overwrite of an existing key must not evict another entry")
	}
}

func TestCache_ClearAndSweep(t *testing.T) {
	c := New(10, time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("short", "r", time.Second)
	c.Set("long", "r", time.Hour)
	current = current.Add(2 * time.Second)

	if removed := c.Sweep(); removed != 1 {
		t.Errorf("Sweep() = %d, want 1", removed)
	}

	c.Clear()
	if got := c.GetStats().Size; got != 0 {
		t.Errorf("size after Clear = %d, want 0", got)
	}
}

func TestProperty_CacheNeverExceedsBound(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("store never grows past max size", prop.ForAll(
		func(keys []string) bool {
			c := New(5, time.Hour)
			for _, k := range keys {
				c.Set(k, "response", 0)
				if c.GetStats().Size > 5 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
