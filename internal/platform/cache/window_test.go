package cache

import (
	"testing"
	"time"
)

func windowAt(t *testing.T, now time.Time) *WindowStore[string] {
	t.Helper()

	s := NewWindowStore[string]([]int{5, 17})
	s.SetClock(func() time.Time { return now })
	return s
}

func TestWindowStore_EmptyCacheNeedsRefresh(t *testing.T) {
	t.Parallel()

	s := windowAt(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	if !s.ShouldRefresh() {
		t.Fatal("empty store must report refresh")
	}
}

func TestWindowStore_FreshBeforeWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s := windowAt(t, now)
	s.Set("snapshot")

	// Move to just before the 17:00 window.
	s.SetClock(func() time.Time { return time.Date(2026, 3, 10, 16, 59, 59, 0, time.UTC) })
	if s.ShouldRefresh() {
		t.Fatal("no window crossed yet, should not refresh")
	}
}

func TestWindowStore_StaleAfterWindowCrossed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	s := windowAt(t, now)
	s.Set("snapshot")

	s.SetClock(func() time.Time { return time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC) })
	if !s.ShouldRefresh() {
		t.Fatal("17:00 window crossed exactly, should refresh")
	}
}

func TestWindowStore_StaleAfterYesterdayWindow(t *testing.T) {
	t.Parallel()

	// Stored yesterday evening after the last window; yesterday's hours are
	// older than lastUpdated but today's 05:00 has passed.
	s := windowAt(t, time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC))
	s.Set("snapshot")

	s.SetClock(func() time.Time { return time.Date(2026, 3, 10, 5, 30, 0, 0, time.UTC) })
	if !s.ShouldRefresh() {
		t.Fatal("this morning's window crossed, should refresh")
	}
}

func TestWindowStore_YesterdayWindowMissedEntirely(t *testing.T) {
	t.Parallel()

	// Stored two days ago; even yesterday's instants lie in (lastUpdated, now].
	s := windowAt(t, time.Date(2026, 3, 8, 3, 0, 0, 0, time.UTC))
	s.Set("snapshot")

	s.SetClock(func() time.Time { return time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC) })
	if !s.ShouldRefresh() {
		t.Fatal("windows were missed while idle, should refresh")
	}
}

func TestWindowStore_NextUpdateRollsToTomorrow(t *testing.T) {
	t.Parallel()

	s := windowAt(t, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC))
	got := s.NextUpdate()
	want := time.Date(2026, 3, 11, 5, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("next update: got %s want %s", got, want)
	}
}

func TestWindowStore_NextUpdateSameDay(t *testing.T) {
	t.Parallel()

	s := windowAt(t, time.Date(2026, 3, 10, 9, 12, 0, 0, time.UTC))
	got := s.NextUpdate()
	want := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("next update: got %s want %s", got, want)
	}
}

func TestWindowStore_ClearDropsValue(t *testing.T) {
	t.Parallel()

	s := windowAt(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	s.Set("snapshot")
	s.Clear()

	if _, _, ok := s.Get(); ok {
		t.Fatal("cleared store should hold no value")
	}
	if !s.ShouldRefresh() {
		t.Fatal("cleared store must report refresh")
	}
}

func TestWindowStore_InvalidHoursFallBack(t *testing.T) {
	t.Parallel()

	s := NewWindowStore[int]([]int{-3, 99})
	got := s.UpdateHours()
	if len(got) != 2 || got[0] != 5 || got[1] != 17 {
		t.Fatalf("expected default hours [5 17], got %v", got)
	}
}
