// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"
)

func TestFakeClock(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewFakeClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clock.Now(), start)
	}

	clock.Advance(90 * time.Second)
	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("Since(start) = %v, want 90s", got)
	}

	pinned := start.Add(time.Hour)
	clock.Set(pinned)
	if !clock.Now().Equal(pinned) {
		t.Errorf("Now() = %v, want %v after Set", clock.Now(), pinned)
	}
}

func TestFakeClock_ZeroInitialIsStable(t *testing.T) {
	t.Parallel()

	a := NewFakeClock(time.Time{})
	b := NewFakeClock(time.Time{})
	if !a.Now().Equal(b.Now()) {
		t.Errorf("zero-initialized clocks disagree: %v vs %v", a.Now(), b.Now())
	}
}

func TestRealClock(t *testing.T) {
	t.Parallel()

	var clock RealClock
	before := time.Now()
	now := clock.Now()
	if now.Before(before.Add(-time.Second)) {
		t.Errorf("Now() = %v, too far behind %v", now, before)
	}
	if clock.Since(before) < 0 {
		t.Error("Since() went backwards")
	}
}
