package models

// SnapshotDateLayout is the calendar-date format snapshots are keyed by.
const SnapshotDateLayout = "2006-01-02"

// MaxSnapshots caps the retained history; once exceeded the oldest dates are
// evicted.
const MaxSnapshots = 90

// Snapshot records each account's total value on one calendar date. At most
// one snapshot exists per date.
type Snapshot struct {
	Date     string             `json:"date"` // YYYY-MM-DD
	Accounts map[string]float64 `json:"accounts"`
}
