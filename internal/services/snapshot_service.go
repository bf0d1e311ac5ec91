package services

import (
	"log"
	"sort"
	"time"

	"portfolio-tracker/internal/models"
)

// SnapshotSource is the slice of the snapshot repository the snapshot
// procedure needs.
type SnapshotSource interface {
	Load() ([]models.Snapshot, error)
	ReplaceAll(snapshots []models.Snapshot) error
}

// ValuationSource lets tests drive TakeSnapshot with canned valuations.
type ValuationSource interface {
	ComputeAccountValuations() ([]models.AccountValuation, error)
}

// SnapshotService runs the daily snapshot procedure: value every account,
// merge today's totals into the history, trim to the retention cap, persist.
// The daily timer and the snapshot-now endpoint both call TakeSnapshot, which
// is idempotent per calendar date.
type SnapshotService struct {
	holdingsRepo HoldingsSource
	snapshotRepo SnapshotSource
	valuations   ValuationSource
	now          func() time.Time
}

func NewSnapshotService(holdingsRepo HoldingsSource, snapshotRepo SnapshotSource, valuations ValuationSource) *SnapshotService {
	return &SnapshotService{
		holdingsRepo: holdingsRepo,
		snapshotRepo: snapshotRepo,
		valuations:   valuations,
		now:          time.Now,
	}
}

// SetClock overrides the time source. Only tests use this.
func (s *SnapshotService) SetClock(now func() time.Time) {
	s.now = now
}

// TakeSnapshot writes today's snapshot and returns it. With no holdings
// stored it writes nothing and returns nil: an empty portfolio has no
// valuation worth recording. Calling it twice on the same date replaces that
// date's entry, so the second caller's values win.
func (s *SnapshotService) TakeSnapshot() (*models.Snapshot, error) {
	holdings, err := s.holdingsRepo.Load()
	if err != nil {
		return nil, err
	}
	if len(holdings) == 0 {
		log.Printf("snapshot skipped: no holdings stored")
		return nil, nil
	}

	valuations, err := s.valuations.ComputeAccountValuations()
	if err != nil {
		return nil, err
	}

	history, err := s.snapshotRepo.Load()
	if err != nil {
		return nil, err
	}

	today := models.Snapshot{
		Date:     s.now().Format(models.SnapshotDateLayout),
		Accounts: make(map[string]float64, len(valuations)),
	}
	for _, v := range valuations {
		today.Accounts[v.Account] = v.TotalValue
	}

	history = mergeSnapshot(history, today)

	if err := s.snapshotRepo.ReplaceAll(history); err != nil {
		return nil, err
	}

	log.Printf("snapshot written for %s (%d accounts, %d entries retained)",
		today.Date, len(today.Accounts), len(history))
	return &today, nil
}

// mergeSnapshot replaces any entry sharing the new snapshot's date, re-sorts
// by date ascending and evicts the oldest entries beyond the retention cap.
func mergeSnapshot(history []models.Snapshot, snapshot models.Snapshot) []models.Snapshot {
	merged := history[:0:0]
	for _, s := range history {
		if s.Date != snapshot.Date {
			merged = append(merged, s)
		}
	}
	merged = append(merged, snapshot)

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	if len(merged) > models.MaxSnapshots {
		merged = merged[len(merged)-models.MaxSnapshots:]
	}

	return merged
}
