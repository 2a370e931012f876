package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAfterFiresOnce(t *testing.T) {
	s := New()
	defer s.Shutdown()

	var fired int32
	done := make(chan struct{})
	s.After(5*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("expected exactly one firing, got %d", got)
	}
}

func TestScheduleReplenishAndSpawnHeartBothFire(t *testing.T) {
	s := New()
	defer s.Shutdown()

	replenished := make(chan struct{})
	spawned := make(chan struct{})
	s.ScheduleReplenish(2*time.Millisecond, func() { close(replenished) })
	s.ScheduleSpawnHeart(2*time.Millisecond, func() { close(spawned) })

	for _, ch := range []chan struct{}{replenished, spawned} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("expected scheduled callback to fire")
		}
	}
}

func TestShutdownSuppressesPendingTimers(t *testing.T) {
	s := New()

	var fired int32
	s.After(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Shutdown()

	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("expected timer suppressed by Shutdown, got %d firings", got)
	}
}

func TestAfterAfterShutdownIsANoop(t *testing.T) {
	s := New()
	s.Shutdown()

	var fired int32
	s.After(time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("expected After to be a no-op once shut down, got %d firings", got)
	}
}
