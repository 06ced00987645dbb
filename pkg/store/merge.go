package store

import (
	"database/sql"
	"fmt"
	"os"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the SQLite database files to merge from.
	SourcePaths []string
	// DestPath is the destination SQLite database file.
	DestPath string
}

// MergeStats counts rows newly written to the destination.
type MergeStats struct {
	InputsMerged     int
	RulesMerged      int
	RunsMerged       int
	InvalidIDsMerged int
	SourcesProcessed int
}

// mergeTables lists what is copied from each source, in dependency order.
// Deduplication relies on INSERT OR IGNORE against primary or unique keys.
var mergeTables = []struct {
	name    string
	columns string
	count   func(*MergeStats) *int
}{
	{"inputs", "id, size, ranges", func(s *MergeStats) *int { return &s.InputsMerged }},
	{"rules", "id, name, part, min_repeats, max_repeats, structural_id", func(s *MergeStats) *int { return &s.RulesMerged }},
	{"runs", "id, rule_id, part, input_id, ranges, scanned, count, total, created_at, duration_ns", func(s *MergeStats) *int { return &s.RunsMerged }},
	{"invalid_ids", "structural_id, run_id, rule_id, value, unit, repeats, range_index", func(s *MergeStats) *int { return &s.InvalidIDsMerged }},
}

// Merge combines multiple run databases into one.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := openSQLite(cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		if err := mergeFrom(destDB, sourcePath, stats); err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.SourcesProcessed++
	}

	return stats, nil
}

// mergeFrom copies every table of a source database into the destination
// in one transaction.
func mergeFrom(destDB *sql.DB, sourcePath string, stats *MergeStats) error {
	// Opening a missing file would create an empty database.
	if _, err := os.Stat(sourcePath); err != nil {
		return fmt.Errorf("source database: %w", err)
	}

	sourceDB, err := openSQLite(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer sourceDB.Close()

	tx, err := destDB.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	counts := make([]int, len(mergeTables))
	for i, table := range mergeTables {
		n, err := copyTable(tx, sourceDB, table.name, table.columns)
		if err != nil {
			return fmt.Errorf("merging %s: %w", table.name, err)
		}
		counts[i] = n
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	for i, table := range mergeTables {
		*table.count(stats) += counts[i]
	}
	return nil
}

// copyTable inserts every row of table from sourceDB and returns how many
// were new.
func copyTable(tx *sql.Tx, sourceDB *sql.DB, table, columns string) (int, error) {
	rows, err := sourceDB.Query(fmt.Sprintf("SELECT %s FROM %s", columns, table))
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	placeholders := "?"
	for range cols[1:] {
		placeholders += ", ?"
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", table, columns, placeholders))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		result, err := stmt.Exec(values...)
		if err != nil {
			return count, err
		}
		affected, _ := result.RowsAffected()
		if affected > 0 {
			count++
		}
	}
	return count, rows.Err()
}
