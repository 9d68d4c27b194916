package schedule

import (
	"fmt"
	"sync"
	"time"
)

// Task is the callback fired by the scheduler.
type Task func()

// Scheduler holds at most one pending timed trigger. All mutators are
// serialized on an internal mutex, so concurrent schedule/stop calls
// cannot leave a dangling or double-fired timer.
type Scheduler struct {
	mu    sync.Mutex
	timer *time.Timer

	// now is injectable for tests.
	now func() time.Time
}

// New creates a Scheduler.
func New() *Scheduler {
	return &Scheduler{now: time.Now}
}

// NewWithClock creates a Scheduler using the given clock.
func NewWithClock(now func() time.Time) *Scheduler {
	return &Scheduler{now: now}
}

// Validate checks that day, hour and minute form a valid day-of-month
// schedule. It is the single range check shared by everything that
// accepts a schedule, so callers can reject bad input before touching
// any scheduling state.
func Validate(day, hour, minute int) error {
	if day < 1 || day > 31 {
		return fmt.Errorf("invalid day of month %d", day)
	}
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("invalid minute %d", minute)
	}
	return nil
}

// ScheduleTask arms the scheduler to run task once at the next future
// occurrence of "day of month at hour:minute", replacing (and
// cancelling) any previously pending trigger. The timer handle stays
// held after the task fires until it is stopped or replaced.
func (s *Scheduler) ScheduleTask(task Task, day, hour, minute int) error {
	if err := Validate(day, hour, minute); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	now := s.now()
	next := NextOccurrence(now, day, hour, minute)
	s.timer = time.AfterFunc(next.Sub(now), task)
	return nil
}

// StopActiveTask cancels the pending trigger if any and clears the
// handle. A task already running is not interrupted. Safe to call when
// nothing is scheduled.
func (s *Scheduler) StopActiveTask() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// IsTaskActive reports whether a timer handle is currently held. It does
// not guarantee the task has not already fired.
func (s *Scheduler) IsTaskActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// NextOccurrence computes the next instant strictly after now matching
// "day of month at hour:minute". When the instant for the current month
// has passed, or the month is too short for the day, it rolls forward to
// the next month that has it.
func NextOccurrence(now time.Time, day, hour, minute int) time.Time {
	year, month := now.Year(), now.Month()
	for {
		if day <= daysIn(year, month) {
			candidate := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
			if candidate.After(now) {
				return candidate
			}
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
