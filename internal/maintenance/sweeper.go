// Copyright 2026 The pepperbot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package maintenance runs the periodic housekeeping sweeps. The stores
// expire entries lazily on access; the sweeps bound memory when traffic goes
// quiet and keep the diagnostic counters honest.
package maintenance

import (
	"fmt"

	rcron "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Sweepable is any store that can drop its expired entries.
type Sweepable interface {
	Sweep() int
}

// Sweeper schedules the stores' Sweep methods on a cron expression.
type Sweeper struct {
	cron   *rcron.Cron
	stores map[string]Sweepable
}

// NewSweeper creates a Sweeper over the named stores. Names appear in log
// output only.
func NewSweeper(stores map[string]Sweepable) *Sweeper {
	return &Sweeper{
		cron:   rcron.New(),
		stores: stores,
	}
}

// Start registers the sweep job under schedule (standard cron syntax or
// @every shorthand) and starts the scheduler.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		log.Info("Maintenance sweeps disabled by configuration")
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, s.sweepAll); err != nil {
		return fmt.Errorf("maintenance: invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	log.WithField("schedule", schedule).Info("Maintenance sweeps scheduled")
	return nil
}

// Stop halts the scheduler and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweepAll() {
	for name, store := range s.stores {
		if removed := store.Sweep(); removed > 0 {
			log.WithFields(log.Fields{
				"store":   name,
				"removed": removed,
			}).Debug("Sweep removed expired entries")
		}
	}
}
