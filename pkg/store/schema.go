package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// sqliteTables lists the table definitions in creation order.
var sqliteTables = []struct {
	name string
	ddl  string
}{
	{"inputs", `
		CREATE TABLE IF NOT EXISTS inputs (
			id TEXT PRIMARY KEY NOT NULL,
			size INTEGER NOT NULL,
			ranges INTEGER NOT NULL
		)`},
	{"rules", `
		CREATE TABLE IF NOT EXISTS rules (
			id TEXT PRIMARY KEY NOT NULL,
			name TEXT NOT NULL,
			part INTEGER NOT NULL,
			min_repeats INTEGER NOT NULL,
			max_repeats INTEGER NOT NULL,
			structural_id TEXT NOT NULL
		)`},
	{"runs", `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY NOT NULL,
			rule_id TEXT NOT NULL,
			part INTEGER NOT NULL,
			input_id TEXT NOT NULL REFERENCES inputs(id),
			ranges INTEGER NOT NULL,
			scanned INTEGER NOT NULL,
			count INTEGER NOT NULL,
			total INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL
		)`},
	{"invalid_ids", `
		CREATE TABLE IF NOT EXISTS invalid_ids (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			structural_id TEXT NOT NULL UNIQUE,
			run_id TEXT NOT NULL REFERENCES runs(id),
			rule_id TEXT NOT NULL,
			value INTEGER NOT NULL,
			unit TEXT NOT NULL,
			repeats INTEGER NOT NULL,
			range_index INTEGER NOT NULL
		)`},
}

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	for _, table := range sqliteTables {
		if _, err := db.Exec(table.ddl); err != nil {
			return fmt.Errorf("creating %s table: %w", table.name, err)
		}
	}

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_invalid_ids_run_id ON invalid_ids(run_id)`)
	if err != nil {
		return fmt.Errorf("creating invalid_ids index: %w", err)
	}
	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}

	return nil
}
