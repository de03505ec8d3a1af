package scheduler

import "time"

// SetClock replaces the scheduler's clock for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}
