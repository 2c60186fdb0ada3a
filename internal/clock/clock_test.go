package clock

import (
	"testing"
	"time"
)

func TestSystemClockReturnsUTC(t *testing.T) {
	now := New().Now()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", now.Location())
	}
}

func TestFakeClockAdvance(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fake := NewFakeClock(base)
	if !fake.Now().Equal(base) {
		t.Fatalf("expected %v, got %v", base, fake.Now())
	}

	fake.Advance(90 * time.Second)
	want := base.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Fatalf("expected %v after advance, got %v", want, fake.Now())
	}
}
