package repository

import (
	"database/sql"
	"fmt"

	"portfolio-tracker/internal/models"

	"github.com/google/uuid"
)

// SnapshotRepository owns the valuation history. Snapshots are stored as one
// row per (date, account) and regrouped by date on load.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns every snapshot ordered by date ascending. An empty table yields
// an empty slice, never an error.
func (r *SnapshotRepository) Load() ([]models.Snapshot, error) {
	query := `SELECT date, account, total_value FROM snapshots ORDER BY date ASC, account ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var date, account string
		var totalValue float64
		if err := rows.Scan(&date, &account, &totalValue); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}

		// Rows arrive date-ordered, so a date change starts a new snapshot.
		if len(snapshots) == 0 || snapshots[len(snapshots)-1].Date != date {
			snapshots = append(snapshots, models.Snapshot{
				Date:     date,
				Accounts: make(map[string]float64),
			})
		}
		snapshots[len(snapshots)-1].Accounts[account] = totalValue
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// ReplaceAll swaps the stored history for the given one inside a single
// transaction. Callers are responsible for ordering and the retention cap.
func (r *SnapshotRepository) ReplaceAll(snapshots []models.Snapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("replacing snapshots: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	insertQuery := `INSERT INTO snapshots (id, date, account, total_value) VALUES (?, ?, ?, ?)`
	for _, s := range snapshots {
		for account, totalValue := range s.Accounts {
			id := uuid.New().String()
			if _, err := tx.Exec(insertQuery, id, s.Date, account, totalValue); err != nil {
				return fmt.Errorf("inserting snapshot %s/%s: %w", s.Date, account, err)
			}
		}
	}

	return tx.Commit()
}
