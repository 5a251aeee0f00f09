package access

import (
	"testing"
	"time"
)

func TestSchedulerRunsDueTasksInOrder(t *testing.T) {
	var s scheduler
	base := time.Unix(0, 0)

	var order []int
	s.at(base.Add(100*time.Millisecond), func(time.Time) { order = append(order, 1) })
	s.at(base.Add(50*time.Millisecond), func(time.Time) { order = append(order, 2) })
	s.at(base.Add(500*time.Millisecond), func(time.Time) { order = append(order, 3) })

	s.advance(base.Add(200 * time.Millisecond))

	// Insertion order, not due order: the loop is tick-driven, tasks due
	// within the same tick fire as they were queued.
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2]", order)
	}
	if s.pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.pending())
	}

	s.advance(base.Add(time.Second))
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", order)
	}
}

func TestSchedulerImmediateChains(t *testing.T) {
	var s scheduler
	base := time.Unix(0, 0)

	// A task queuing a follow-up due at the same instant runs it within
	// the same advance.
	var steps int
	s.at(base, func(now time.Time) {
		steps++
		s.at(now, func(time.Time) { steps++ })
	})

	s.advance(base)
	if steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}
	if s.pending() != 0 {
		t.Fatalf("pending = %d, want 0", s.pending())
	}
}

func TestSchedulerReArming(t *testing.T) {
	var s scheduler
	base := time.Unix(0, 0)

	// A task re-arming itself in the future runs once per due interval,
	// like a door motion increment.
	var runs int
	var tick func(now time.Time)
	tick = func(now time.Time) {
		runs++
		if runs < 5 {
			s.at(now.Add(20*time.Millisecond), tick)
		}
	}
	s.at(base, tick)

	now := base
	for i := 0; i < 10; i++ {
		s.advance(now)
		now = now.Add(10 * time.Millisecond)
	}
	if runs != 5 {
		t.Fatalf("runs = %d, want 5", runs)
	}
}

func TestSchedulerNothingDue(t *testing.T) {
	var s scheduler
	base := time.Unix(0, 0)

	ran := false
	s.at(base.Add(time.Hour), func(time.Time) { ran = true })

	s.advance(base)
	if ran {
		t.Fatal("task ran before its due time")
	}
	if s.pending() != 1 {
		t.Fatalf("pending = %d, want 1", s.pending())
	}
}
