package repository

import (
	"database/sql"
	"fmt"

	"portfolio-tracker/internal/models"
)

// HoldingsRepository owns the current holdings list. The only mutation is a
// wholesale replace (CSV upload, or clear with an empty set).
type HoldingsRepository struct {
	db *sql.DB
}

func NewHoldingsRepository(db *sql.DB) *HoldingsRepository {
	return &HoldingsRepository{db: db}
}

// Load returns every stored holding in insertion order. An empty table yields
// an empty slice, never an error.
func (r *HoldingsRepository) Load() ([]models.Holding, error) {
	query := `SELECT account, symbol, quantity FROM holdings ORDER BY id ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("loading holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Account, &h.Symbol, &h.Quantity); err != nil {
			return nil, fmt.Errorf("scanning holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holdings, nil
}

// ReplaceAll swaps the stored set for the given one inside a single
// transaction, so concurrent readers see either the old set or the new one,
// never a partial mix.
func (r *HoldingsRepository) ReplaceAll(holdings []models.Holding) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("replacing holdings: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM holdings`); err != nil {
		return fmt.Errorf("clearing holdings: %w", err)
	}

	insertQuery := `INSERT INTO holdings (account, symbol, quantity) VALUES (?, ?, ?)`
	for _, h := range holdings {
		if _, err := tx.Exec(insertQuery, h.Account, h.Symbol, h.Quantity); err != nil {
			return fmt.Errorf("inserting holding %s/%s: %w", h.Account, h.Symbol, err)
		}
	}

	return tx.Commit()
}
