package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// InitDB opens (creating if necessary) the sqlite database at path and makes
// sure the schema exists. A missing file is a valid empty state.
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var err error
	DB, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	return CreateSchema(DB)
}

// CreateSchema creates the holdings and snapshots tables if they do not exist.
// Split out from InitDB so tests can run against their own in-memory handle.
func CreateSchema(db *sql.DB) error {
	createHoldingsTableSQL := `
	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity REAL NOT NULL
	);`

	if _, err := db.Exec(createHoldingsTableSQL); err != nil {
		return err
	}

	// One row per (date, account); rows sharing a date are grouped into a
	// single snapshot on load.
	createSnapshotsTableSQL := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		account TEXT NOT NULL,
		total_value REAL NOT NULL,
		UNIQUE(date, account)
	);`

	if _, err := db.Exec(createSnapshotsTableSQL); err != nil {
		return err
	}

	createSnapshotsIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(date);`

	_, err := db.Exec(createSnapshotsIndexSQL)
	return err
}
