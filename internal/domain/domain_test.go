package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPool_Counters(t *testing.T) {
	tests := []struct {
		name    string
		pool    Pool
		op      func(*Pool) error
		want    int
		wantErr error
	}{
		{name: "increment", pool: Pool{Allocated: 1, Total: 2}, op: func(p *Pool) error { return p.Increment(1) }, want: 2},
		{name: "increment past total", pool: Pool{Allocated: 2, Total: 2}, op: func(p *Pool) error { return p.Increment(1) }, want: 2, wantErr: ErrCapacityExceeded},
		{name: "decrement", pool: Pool{Allocated: 5, Total: 9}, op: func(p *Pool) error { return p.Decrement(5) }, want: 0},
		{name: "decrement past zero", pool: Pool{Allocated: 2, Total: 9}, op: func(p *Pool) error { return p.Decrement(3) }, want: 2, wantErr: ErrInvalidAdjustment},
		{name: "decrement zero", pool: Pool{Allocated: 2, Total: 9}, op: func(p *Pool) error { return p.Decrement(0) }, want: 2, wantErr: ErrInvalidCount},
		{name: "release floors at zero", pool: Pool{Allocated: 0, Total: 9}, op: func(p *Pool) error { p.Release(); return nil }, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.pool
			err := tt.op(&p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if p.Allocated != tt.want {
				t.Fatalf("expected allocated %d, got %d", tt.want, p.Allocated)
			}
			if p.Remaining() != p.Total-p.Allocated {
				t.Fatalf("remaining mismatch: %+v", p)
			}
		})
	}
}

func TestLedgerFilter_Matches(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	e := LedgerEntry{PoolID: "p1", Action: ActionProcess, CreatedAt: day.Add(23*time.Hour + 59*time.Minute)}

	next := day.AddDate(0, 0, 1)
	cases := []struct {
		f    LedgerFilter
		want bool
	}{
		{LedgerFilter{}, true},
		{LedgerFilter{PoolID: "p1", Action: ActionProcess, Date: &day}, true},
		{LedgerFilter{PoolID: "p2"}, false},
		{LedgerFilter{Action: ActionAllocate}, false},
		{LedgerFilter{Date: &next}, false},
	}
	for i, c := range cases {
		if got := c.f.Matches(e); got != c.want {
			t.Fatalf("case %d: expected %v, got %v", i, c.want, got)
		}
	}
}

func TestCorrectionRequest_Expired(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	req := CorrectionRequest{CreatedAt: created}
	window := 10 * time.Minute

	if req.Expired(created.Add(window), window) {
		t.Fatal("exactly at the window should still be valid")
	}
	if !req.Expired(created.Add(window+time.Nanosecond), window) {
		t.Fatal("past the window should be expired")
	}
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("seed: %w", ErrDuplicateCode)
	if KindOf(wrapped) != KindConflict || CodeOf(wrapped) != "duplicate_code" {
		t.Fatalf("unexpected kind/code for %v", wrapped)
	}
	if KindOf(errors.New("x")) != KindInternal || CodeOf(errors.New("x")) != "internal_error" {
		t.Fatal("plain errors should be internal")
	}
	if ActionManual.Label() != "Manually Processed" || LedgerAction("reset").Valid() {
		t.Fatal("unexpected action metadata")
	}
}
