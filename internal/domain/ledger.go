package domain

import "time"

type LedgerAction string

const (
	ActionAllocate LedgerAction = "allocate"
	ActionProcess  LedgerAction = "process"
	ActionManual   LedgerAction = "manual"
	ActionDelete   LedgerAction = "delete"
)

var actionLabels = map[LedgerAction]string{
	ActionAllocate: "Allocated",
	ActionProcess:  "Processed",
	ActionManual:   "Manually Processed",
	ActionDelete:   "Deleted",
}

func (a LedgerAction) Valid() bool {
	_, ok := actionLabels[a]
	return ok
}

// Label is the human readable name used in reports.
func (a LedgerAction) Label() string {
	if l, ok := actionLabels[a]; ok {
		return l
	}
	return string(a)
}

// LedgerEntry is an append-only record of a capacity change.
// Quantity is nil only when SampleCodes describes the change.
type LedgerEntry struct {
	ID          string
	PoolID      string
	PoolName    string
	Action      LedgerAction
	Quantity    *int
	SampleCodes []string
	CreatedAt   time.Time
}

// LedgerFilter narrows ledger reads. Zero values match everything.
type LedgerFilter struct {
	PoolID string
	Action LedgerAction
	// Date selects a single UTC calendar day.
	Date  *time.Time
	Limit int
}

// DayBounds returns the [start, end) UTC range of the filter date.
func (f LedgerFilter) DayBounds() (time.Time, time.Time, bool) {
	if f.Date == nil {
		return time.Time{}, time.Time{}, false
	}
	d := f.Date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1), true
}

// Matches reports whether e passes the filter; used by in-memory readers.
func (f LedgerFilter) Matches(e LedgerEntry) bool {
	if f.PoolID != "" && e.PoolID != f.PoolID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if start, end, ok := f.DayBounds(); ok {
		ts := e.CreatedAt.UTC()
		if ts.Before(start) || !ts.Before(end) {
			return false
		}
	}
	return true
}
