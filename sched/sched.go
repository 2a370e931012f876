// The turn scheduler: delayed self-notifications that drive per-game
// turn replenishment and stochastic item spawns.
//
// Copyright (c) 2023  Philip Kaludercic
//
// This file is part of go-kgp.
//
// go-kgp is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// go-kgp is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with go-kgp . If not, see
// <http://www.gnu.org/licenses/>

// Package sched schedules delayed self-messages back into the
// supervisor's inbox, the way relay_server.rs's ctx.notify_later does
// in the original implementation and queue.go's single-goroutine
// actor loop does in the teacher: a timer firing is just another
// event arriving at the same mailbox a client command would.
package sched

import (
	"sync"
	"time"

	"go-gw/internal/glog"
)

// Scheduler owns every outstanding timer so Shutdown can stop them
// cleanly; it does not otherwise participate in ordering, since
// delivery re-enters the single-writer inbox which serializes
// everything itself.
type Scheduler struct {
	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	done   bool
}

func New() *Scheduler {
	return &Scheduler{timers: make(map[*time.Timer]struct{})}
}

func (s *Scheduler) String() string { return "Turn Scheduler" }

// After schedules fn to run after d, posting back into whatever inbox
// fn closes over. Per spec §4.3, cancellation is never explicit: the
// handler itself discards stale events by checking game phase. This
// only prevents firing after Shutdown.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, t)
		done := s.done
		s.mu.Unlock()
		if done {
			return
		}
		fn()
	})
	s.timers[t] = struct{}{}
}

// ScheduleReplenish is the spec §4.3 contract: after StartGame
// succeeds, and after each Replenish, schedule the next one.
func (s *Scheduler) ScheduleReplenish(turnTime time.Duration, fn func()) {
	glog.Debug.Printf("scheduling replenish in %s", turnTime)
	s.After(turnTime, fn)
}

// ScheduleSpawnHeart schedules an optional stochastic item spawn at a
// random sub-turn offset, per spec §4.3.
func (s *Scheduler) ScheduleSpawnHeart(delay time.Duration, fn func()) {
	glog.Debug.Printf("scheduling heart spawn in %s", delay)
	s.After(delay, fn)
}

func (s *Scheduler) Start() {}

func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[*time.Timer]struct{})
}
