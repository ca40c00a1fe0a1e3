package cache

import (
	"sort"
	"sync"
	"time"
)

// WindowStore holds a single value that is considered stale once any of a
// set of fixed daily UTC update instants has passed since the value was
// stored. It replaces ad-hoc "refresh twice a day" checks with one
// lock-guarded object that owners pass around explicitly.
type WindowStore[T any] struct {
	mu          sync.RWMutex
	hours       []int
	value       T
	hasValue    bool
	lastUpdated time.Time
	now         func() time.Time
}

// NewWindowStore builds a store refreshing at the given UTC hours.
// Out-of-range hours are dropped; an empty set falls back to 5 and 17.
func NewWindowStore[T any](updateHours []int) *WindowStore[T] {
	hours := make([]int, 0, len(updateHours))
	for _, h := range updateHours {
		if h >= 0 && h <= 23 {
			hours = append(hours, h)
		}
	}
	if len(hours) == 0 {
		hours = []int{5, 17}
	}
	sort.Ints(hours)

	return &WindowStore[T]{
		hours: hours,
		now:   time.Now,
	}
}

// Get returns the stored value, when it was stored, and whether one exists.
func (s *WindowStore[T]) Get() (T, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.lastUpdated, s.hasValue
}

func (s *WindowStore[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.hasValue = true
	s.lastUpdated = s.now().UTC()
	s.mu.Unlock()
}

// Clear drops the stored value so the next ShouldRefresh reports true.
func (s *WindowStore[T]) Clear() {
	var zero T
	s.mu.Lock()
	s.value = zero
	s.hasValue = false
	s.lastUpdated = time.Time{}
	s.mu.Unlock()
}

// ShouldRefresh reports whether the value is missing or a scheduled update
// instant (today's or yesterday's) lies in (lastUpdated, now].
func (s *WindowStore[T]) ShouldRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasValue {
		return true
	}

	now := s.now().UTC()
	for _, day := range []time.Time{now, now.AddDate(0, 0, -1)} {
		for _, hour := range s.hours {
			at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
			if s.lastUpdated.Before(at) && !at.After(now) {
				return true
			}
		}
	}

	return false
}

// NextUpdate returns the earliest scheduled instant strictly after now.
func (s *WindowStore[T]) NextUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	for _, hour := range s.hours {
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
		if at.After(now) {
			return at
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), s.hours[0], 0, 0, 0, time.UTC)
}

// UpdateHours exposes the configured schedule, e.g. for cron registration.
func (s *WindowStore[T]) UpdateHours() []int {
	out := make([]int, len(s.hours))
	copy(out, s.hours)
	return out
}

// SetClock overrides the time source. Tests only.
func (s *WindowStore[T]) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}
