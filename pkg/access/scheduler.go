package access

import "time"

// task is a pending side effect with its due time.
type task struct {
	due time.Time
	run func(now time.Time)
}

// scheduler advances pending tasks once per control-loop tick. It is what
// keeps door motion and tone patterns non-blocking: each increment is a
// task that re-arms its successor instead of sleeping in place.
//
// Not safe for concurrent use; it is only touched from the control loop.
type scheduler struct {
	tasks []task
}

// at queues fn to run at the first advance whose tick time is at or past due.
func (s *scheduler) at(due time.Time, fn func(now time.Time)) {
	s.tasks = append(s.tasks, task{due: due, run: fn})
}

// advance runs every due task, in insertion order. A task may queue
// follow-ups; follow-ups due at or before now run within the same advance.
func (s *scheduler) advance(now time.Time) {
	for {
		idx := -1
		for i, t := range s.tasks {
			if !t.due.After(now) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		t := s.tasks[idx]
		s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
		t.run(now)
	}
}

// pending returns the number of queued tasks.
func (s *scheduler) pending() int {
	return len(s.tasks)
}
