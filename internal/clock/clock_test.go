package clock

import (
	"testing"
	"time"
)

func TestManual_Advance(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	c := NewManual(start)

	c.Advance(9*time.Minute + 59*time.Second)
	if got := c.Now(); !got.Equal(start.Add(599 * time.Second)) {
		t.Fatalf("unexpected time %v", got)
	}

	c.Set(start)
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("expected reset to %v, got %v", start, got)
	}
}

func TestFixed_IsUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	c := NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, loc))
	if c.Now().Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", c.Now().Location())
	}
}
