package testfixtures

import (
	"testing"
	"time"
)

func TestClock_DefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected reference time, got %s", clock.Now())
	}
}

func TestClock_AdvanceAndSet(t *testing.T) {
	start := time.Date(2025, time.October, 14, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	advanced := clock.Advance(30 * time.Minute)
	if !advanced.Equal(start.Add(30 * time.Minute)) {
		t.Fatalf("expected advance by 30m, got %s", advanced)
	}
	if !clock.Now().Equal(advanced) {
		t.Fatalf("Now should track the advanced time, got %s", clock.Now())
	}

	reset := start.Add(2 * time.Hour)
	clock.Set(reset)
	if !clock.Now().Equal(reset) {
		t.Fatalf("Set should override the current time, got %s", clock.Now())
	}
}

func TestClock_NowFuncOnNilClock(t *testing.T) {
	var clock *Clock
	nowFunc := clock.NowFunc()
	if nowFunc == nil {
		t.Fatal("expected a fallback time source")
	}
	if nowFunc().IsZero() {
		t.Fatal("fallback time source should return the wall clock")
	}
}
